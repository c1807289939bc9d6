package csrf

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule exempts matching request paths from token validation. It is either
// a path prefix or a regular expression.
type Rule struct {
	prefix  string
	pattern *regexp.Regexp
}

// Prefix matches path itself and anything below it: "/api/webhooks"
// matches "/api/webhooks" and "/api/webhooks/media", not "/api/webhooksx".
func Prefix(path string) Rule {
	return Rule{prefix: path}
}

// Pattern compiles expr into a regex rule.
func Pattern(expr string) (Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("%w %q: %v", ErrInvalidPattern, expr, err)
	}
	return Rule{pattern: re}, nil
}

// MustPattern is like Pattern but panics on a bad expression.
func MustPattern(expr string) Rule {
	r, err := Pattern(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// Match reports whether path is covered by the rule.
func (r Rule) Match(path string) bool {
	if r.pattern != nil {
		return r.pattern.MatchString(path)
	}
	if r.prefix == "" {
		return false
	}
	if path == r.prefix {
		return true
	}
	if strings.HasSuffix(r.prefix, "/") {
		return strings.HasPrefix(path, r.prefix)
	}
	return strings.HasPrefix(path, r.prefix+"/")
}

func (r Rule) String() string {
	if r.pattern != nil {
		return r.pattern.String()
	}
	return r.prefix
}

// Rules is an ordered exemption list.
type Rules []Rule

// Match returns the first rule covering path.
func (rs Rules) Match(path string) (Rule, bool) {
	for _, r := range rs {
		if r.Match(path) {
			return r, true
		}
	}
	return Rule{}, false
}

// ParseRules builds rules from config entries. Entries starting with "^"
// are regular expressions, everything else is a path prefix. Blank entries
// are skipped.
func ParseRules(entries []string) (Rules, error) {
	rules := make(Rules, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.HasPrefix(e, "^") {
			r, err := Pattern(e)
			if err != nil {
				return nil, err
			}
			rules = append(rules, r)
			continue
		}
		rules = append(rules, Prefix(e))
	}
	return rules, nil
}
