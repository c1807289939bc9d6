package sanitizer

import (
	"errors"
	"fmt"
)

// ErrTrailingData is returned by Decode when the input holds more than one
// JSON document.
var ErrTrailingData = errors.New("sanitizer: unexpected data after top-level value")

// StructuralError reports a value that cannot be walked: an unsupported Go
// type, a non-finite number or nesting deeper than the configured limit.
type StructuralError struct {
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Path == "" {
		return "sanitizer: " + e.Reason
	}
	return fmt.Sprintf("sanitizer: %s at %s", e.Reason, e.Path)
}

// wrapPath prefixes seg onto the path of a *StructuralError; other errors
// pass through untouched.
func wrapPath(err error, seg string) error {
	var se *StructuralError
	if errors.As(err, &se) {
		se.Path = seg + se.Path
	}
	return err
}

func rootPath(err error) error {
	return wrapPath(err, "$")
}
