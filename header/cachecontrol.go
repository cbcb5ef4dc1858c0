package header

import (
	"errors"
	"strconv"
	"strings"
)

// ErrConflictingDirective is returned for a directive that is repeated with different arguments.
var ErrConflictingDirective = errors.New("conflicting cache directive")

// CacheControl holds the parsed directives of a "Cache-Control" field.
//
//	Cache-Control   = #cache-directive
//	cache-directive = token [ "=" ( token / quoted-string ) ]
//
// Directive names are compared case-insensitively. Arguments are kept verbatim,
// which means a quoted max-age is not a valid integer. A repeated directive keeps
// its first argument and is marked as conflicting if a later argument differs.
type CacheControl struct {
	directives map[string]directive
}

type directive struct {
	arg      string
	hasArg   bool
	conflict bool
}

// ParseCacheControl parses a Cache-Control field value.
// Empty or malformed input results in an empty set of directives.
func ParseCacheControl(value string) CacheControl {
	m := make(map[string]directive)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, arg, hasArg := strings.Cut(part, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		d := directive{arg: strings.TrimSpace(arg), hasArg: hasArg}
		if first, seen := m[name]; seen {
			if first.arg != d.arg || first.hasArg != d.hasArg {
				first.conflict = true
				m[name] = first
			}
			continue
		}
		m[name] = d
	}
	return CacheControl{m}
}

// Get returns the argument of the given directive, along with a boolean
// indicating whether the directive is present. A directive without "=" has an empty argument.
func (c CacheControl) Get(name string) (string, bool) {
	d, ok := c.directives[strings.ToLower(name)]
	return d.arg, ok
}

// Argument returns the argument of the given directive and whether it had one at all,
// i.e. it tells "max-age" apart from "max-age=".
func (c CacheControl) Argument(name string) (string, bool) {
	d := c.directives[strings.ToLower(name)]
	return d.arg, d.hasArg
}

// Has reports whether the given directive is present.
func (c CacheControl) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// MaxAge returns the max-age directive in seconds.
// present is false if there is no max-age directive.
// err is non-nil if the directive is present but its argument is not a base-10 integer,
// or if it is repeated with different arguments.
func (c CacheControl) MaxAge() (seconds int64, present bool, err error) {
	d, ok := c.directives["max-age"]
	if !ok {
		return 0, false, nil
	}
	if d.conflict {
		return 0, true, ErrConflictingDirective
	}
	seconds, err = strconv.ParseInt(d.arg, 10, 64)
	return seconds, true, err
}
