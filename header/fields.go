// Package header implements the header field helpers used by the cache policy:
// case-insensitive lookup over ordered field lists, list-valued fields,
// Cache-Control directives, HTTP dates and the end-to-end header subset.
package header

import (
	"net/http"
	"sort"
	"strings"
)

// Field is a single header field line.
type Field struct {
	Name  string
	Value string
}

// Fields is an ordered list of header field lines.
// Duplicate names are allowed and their relative order is preserved.
type Fields []Field

// Value returns the value of the named field, matching the name case-insensitively.
// Repeated fields are combined into one value, in order of appearance,
// separated by ", ". The boolean is false if the field is absent.
func (f Fields) Value(name string) (string, bool) {
	var (
		values []string
		found  bool
	)
	for _, field := range f {
		if strings.EqualFold(field.Name, name) {
			values = append(values, field.Value)
			found = true
		}
	}
	return strings.Join(values, ", "), found
}

// Has reports whether the named field is present.
func (f Fields) Has(name string) bool {
	_, ok := f.Value(name)
	return ok
}

// Add returns f with the given field appended.
func (f Fields) Add(name, value string) Fields {
	return append(f, Field{Name: name, Value: value})
}

// Clone returns a copy of f that does not share its backing array.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	copy(out, f)
	return out
}

// HTTP converts the fields to an http.Header.
func (f Fields) HTTP() http.Header {
	h := make(http.Header, len(f))
	for _, field := range f {
		h.Add(field.Name, field.Value)
	}
	return h
}

// FromHTTP converts an http.Header to fields.
// Names are emitted in sorted order so the result is deterministic;
// the values of each name keep their original order.
func FromHTTP(h http.Header) Fields {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	f := make(Fields, 0, len(h))
	for _, name := range names {
		for _, value := range h[name] {
			f = append(f, Field{Name: name, Value: value})
		}
	}
	return f
}

// List splits a comma-separated field value into its trimmed, non-empty members.
func List(value string) []string {
	list := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// LowerList is like List, but case-folds every member.
// It is used for fields whose members are header names, such as Vary and Connection.
func LowerList(value string) []string {
	list := List(value)
	for i, item := range list {
		list[i] = strings.ToLower(item)
	}
	return list
}
