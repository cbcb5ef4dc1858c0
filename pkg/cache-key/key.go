package cachekey

import (
	"net"
	"strings"
)

const (
	namespaceSeparator     = ":"
	discriminatorSeparator = "\t"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// URL returns the canonical resource identity for a request:
// scheme, host, port (omitted when it is the scheme's default), escaped path and query.
func URL(scheme, host, escapedPath, rawQuery string) string {
	scheme = strings.ToLower(scheme)
	host = strings.ToLower(host)
	if h, port, err := net.SplitHostPort(host); err == nil && defaultPorts[scheme] == port {
		host = h
		if strings.Contains(h, ":") {
			// IPv6 literal
			host = "[" + h + "]"
		}
	}
	if escapedPath == "" {
		escapedPath = "/"
	}
	url := scheme + "://" + host + escapedPath
	if rawQuery != "" {
		url += "?" + rawQuery
	}
	return url
}

// Keyer builds the composite keys persistent backends store entries under.
type Keyer struct {
	// Namespace separates the keys of one store from other users of the same backend.
	Namespace string
}

func NewKeyer(namespace string) Keyer {
	return Keyer{Namespace: namespace}
}

// Prefix returns the key prefix shared by every variant stored for url.
// It is suitable for finding all stored variants with a prefix scan.
func (k Keyer) Prefix(url string) string {
	return k.Namespace + namespaceSeparator + url + discriminatorSeparator
}

// Key returns the full key for the variant of url identified by the canonical discriminator key.
func (k Keyer) Key(url, discriminators string) string {
	return k.Prefix(url) + discriminators
}

// Resource returns the key identifying url as a whole,
// for backends that store all variants under one key (e.g. a hash).
func (k Keyer) Resource(url string) string {
	return k.Namespace + namespaceSeparator + url
}
