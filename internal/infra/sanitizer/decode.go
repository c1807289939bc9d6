package sanitizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxDecodeDepth bounds nesting while decoding untrusted input.
const maxDecodeDepth = 512

// Decode reads exactly one JSON document from r, keeping object members in
// source order and numbers as their literal text. An empty reader yields
// io.EOF.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		if depth >= maxDecodeDepth {
			return nil, &StructuralError{Reason: "maximum nesting depth exceeded"}
		}
		switch t {
		case '[':
			return decodeArray(dec, depth)
		case '{':
			return decodeObject(dec, depth)
		}
	}
	return nil, fmt.Errorf("sanitizer: unexpected token %v", tok)
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	arr := Array{}
	for dec.More() {
		v, err := decodeValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	// closing ]
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	obj := Object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("sanitizer: object key is %T, not string", tok)
		}
		v, err := decodeValue(dec, depth+1)
		if err != nil {
			return nil, err
		}
		obj = append(obj, Member{Key: key, Value: v})
	}
	// closing }
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}
