package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Kind tells where the value of a discriminator comes from.
type Kind string

const (
	// Environ discriminators are read from the request environment (method, remote user, ...).
	Environ Kind = "environ"
	// Vary discriminators are read from request headers.
	Vary Kind = "vary"
)

// Discriminator is a request characteristic a stored variant was selected by.
type Discriminator struct {
	Kind  Kind
	Name  string
	Value string
}

func (d Discriminator) less(o Discriminator) bool {
	if d.Kind != o.Kind {
		return d.Kind < o.Kind
	}
	if d.Name != o.Name {
		return d.Name < o.Name
	}
	return d.Value < o.Value
}

// Discriminators is an unordered set of discriminators.
type Discriminators []Discriminator

// Canonical returns the set sorted by kind, name and value, without duplicates.
// Two sets with the same members have equal canonical forms.
func (d Discriminators) Canonical() Discriminators {
	out := make(Discriminators, len(d))
	copy(out, d)
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	n := 0
	for i, disc := range out {
		if i > 0 && disc == out[n-1] {
			continue
		}
		out[n] = disc
		n++
	}
	return out[:n]
}

// Key returns a string that identifies the set.
// Distinct sets have distinct keys.
func (d Discriminators) Key() string {
	canonical := d.Canonical()
	parts := make([]string, len(canonical))
	for i, disc := range canonical {
		parts[i] = url.QueryEscape(string(disc.Kind)) + ":" +
			url.QueryEscape(disc.Name) + "=" + url.QueryEscape(disc.Value)
	}
	return strings.Join(parts, "&")
}
