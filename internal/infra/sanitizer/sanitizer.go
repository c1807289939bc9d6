// Package sanitizer strips markup from JSON-like request data.
//
// Strings run through a bluemonday policy that keeps a small set of inline
// formatting tags without attributes. Elements such as script and style are
// dropped together with their content, and HTML comments never survive.
// Objects have both keys and values cleaned; arrays keep length and order.
package sanitizer

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultAllowedTags are the elements kept by New when no tags are given.
var DefaultAllowedTags = []string{"b", "i", "em", "strong", "br"}

// DefaultMaxDepth limits how deep Sanitize will walk.
const DefaultMaxDepth = 64

// Sanitizer is immutable once built and safe for concurrent use.
type Sanitizer struct {
	policy   *bluemonday.Policy
	maxDepth int
}

type options struct {
	tags     []string
	maxDepth int
}

// Option configures a Sanitizer.
type Option func(*options)

// WithAllowedTags replaces the default tag allow-list. Allowed tags never
// keep attributes.
func WithAllowedTags(tags ...string) Option {
	return func(o *options) {
		o.tags = tags
	}
}

// WithMaxDepth sets the nesting limit; values <= 0 are ignored.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// New builds a Sanitizer. The bluemonday base policy already skips the
// content of script, style, iframe, object and similar elements.
func New(opts ...Option) *Sanitizer {
	o := options{
		tags:     DefaultAllowedTags,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}

	policy := bluemonday.NewPolicy()
	if len(o.tags) > 0 {
		policy.AllowElements(o.tags...)
	}

	return &Sanitizer{policy: policy, maxDepth: o.maxDepth}
}

// SanitizeString filters a single string.
func (s *Sanitizer) SanitizeString(in string) string {
	return s.policy.Sanitize(in)
}

// Sanitize returns a cleaned deep copy of v. A nil Value is treated as
// Null. Nesting beyond the configured depth, which includes arrays that
// contain themselves, fails with a *StructuralError.
func (s *Sanitizer) Sanitize(v Value) (Value, error) {
	out, err := s.walk(v, 0)
	if err != nil {
		return nil, rootPath(err)
	}
	return out, nil
}

// SanitizeAny converts v with FromAny and sanitizes the result.
func (s *Sanitizer) SanitizeAny(v any) (Value, error) {
	val, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	return s.Sanitize(val)
}

func (s *Sanitizer) walk(v Value, depth int) (Value, error) {
	if depth > s.maxDepth {
		return nil, &StructuralError{Reason: "maximum nesting depth exceeded"}
	}

	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Null, Bool, Number:
		return t, nil
	case String:
		return String(s.policy.Sanitize(string(t))), nil
	case Array:
		out := make(Array, len(t))
		for i, e := range t {
			ev, err := s.walk(e, depth+1)
			if err != nil {
				return nil, wrapPath(err, fmt.Sprintf("[%d]", i))
			}
			out[i] = ev
		}
		return out, nil
	case Object:
		out := make(Object, len(t))
		for i, m := range t {
			ev, err := s.walk(m.Value, depth+1)
			if err != nil {
				return nil, wrapPath(err, "."+m.Key)
			}
			out[i] = Member{Key: s.policy.Sanitize(m.Key), Value: ev}
		}
		return out, nil
	default:
		return nil, &StructuralError{Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
}
