package sanitizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Value is a JSON-like value. The only implementations are Null, Bool,
// Number, String, Array and Object.
type Value interface {
	json.Marshaler
	isValue()
}

type (
	Null   struct{}
	Bool   bool
	Number string // JSON number literal, kept verbatim
	String string
	Array  []Value
	Object []Member
)

// Member is one key/value pair of an Object. Objects keep members in the
// order they were decoded.
type Member struct {
	Key   string
	Value Value
}

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Object) isValue() {}

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (b Bool) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(b))), nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("0"), nil
	}
	if !json.Valid([]byte(n)) {
		return nil, fmt.Errorf("sanitizer: invalid number literal %q", string(n))
	}
	return []byte(n), nil
}

func (s String) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }

func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeValue(&buf, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeValue(&buf, m.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// Get returns the value stored under key. With duplicate keys the last
// one wins, as with encoding/json.
func (o Object) Get(key string) (Value, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// GetString returns the string stored under key, or "" when the key is
// missing or holds another type.
func (o Object) GetString(key string) string {
	v, ok := o.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(String)
	return string(s)
}

// Keys returns member keys in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// FromAny converts plain Go values (as produced by encoding/json or
// url.Values) into a Value. Map keys are sorted since Go maps carry no
// order. Unsupported types yield a *StructuralError.
func FromAny(v any) (Value, error) {
	val, err := fromAny(v)
	if err != nil {
		return nil, rootPath(err)
	}
	return val, nil
}

func fromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case float64:
		return numberFromFloat(t)
	case float32:
		return numberFromFloat(float64(t))
	case int:
		return Number(strconv.FormatInt(int64(t), 10)), nil
	case int32:
		return Number(strconv.FormatInt(int64(t), 10)), nil
	case int64:
		return Number(strconv.FormatInt(t, 10)), nil
	case uint:
		return Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint32:
		return Number(strconv.FormatUint(uint64(t), 10)), nil
	case uint64:
		return Number(strconv.FormatUint(t, 10)), nil
	case []string:
		arr := make(Array, len(t))
		for i, s := range t {
			arr[i] = String(s)
		}
		return arr, nil
	case []any:
		arr := make(Array, len(t))
		for i, e := range t {
			ev, err := fromAny(e)
			if err != nil {
				return nil, wrapPath(err, fmt.Sprintf("[%d]", i))
			}
			arr[i] = ev
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, 0, len(t))
		for _, k := range sortedKeys(t) {
			ev, err := fromAny(t[k])
			if err != nil {
				return nil, wrapPath(err, "."+k)
			}
			obj = append(obj, Member{Key: k, Value: ev})
		}
		return obj, nil
	case map[string][]string:
		obj := make(Object, 0, len(t))
		for _, k := range sortedKeys(t) {
			ev, _ := fromAny(t[k])
			obj = append(obj, Member{Key: k, Value: ev})
		}
		return obj, nil
	case map[string]string:
		obj := make(Object, 0, len(t))
		for _, k := range sortedKeys(t) {
			obj = append(obj, Member{Key: k, Value: String(t[k])})
		}
		return obj, nil
	default:
		return nil, &StructuralError{Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func numberFromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &StructuralError{Reason: "non-finite number"}
	}
	return Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
