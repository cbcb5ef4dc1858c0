package rfc9211

import (
	"fmt"
	"strings"
)

// §  2.  The Cache-Status HTTP Response Header Field
// §
// §     The Cache-Status HTTP response header field indicates caches' handling
// §     of the request corresponding to the response it occurs within.
// §
// §     Each member of the list represents a cache that has handled the
// §     request.  The first member of the list represents the cache closest
// §     to the origin server, and the last member of the list represents the
// §     cache closest to the user (possibly including the user agent's cache
// §     itself if it appends a value).

type Status string

const (
	StatusHit Status = "hit"
	StatusFwd Status = "fwd"
)

// §  2.2.  The fwd Parameter
// §
// §     "fwd" indicates that the request went forward towards the origin and
// §     why.

type FwdReason string

const (
	// §     *  bypass - The cache was configured to not handle this request.
	FwdBypass FwdReason = "bypass"

	// §     *  method - The request method's semantics require the request to be
	// §        forwarded.
	FwdMethod FwdReason = "method"

	// §     *  uri-miss - The cache did not contain any responses that matched
	// §        the request URI.
	FwdUriMiss FwdReason = "uri-miss"

	// §     *  vary-miss - The cache contained a response that matched the
	// §        request URI, but it could not select a response based upon this
	// §        request's header fields and stored Vary header fields.
	FwdVaryMiss FwdReason = "vary-miss"

	// §     *  miss - The cache did not contain any responses that could be used
	// §        to satisfy this request (to be used when an implementation cannot
	// §        distinguish between uri-miss and vary-miss).
	FwdMiss FwdReason = "miss"

	// §     *  request - The cache was able to select a fresh response for the
	// §        request, but the request's semantics (e.g., Cache-Control request
	// §        directives) did not allow its use.
	FwdRequest FwdReason = "request"

	// §     *  stale - The cache was able to select a response for the request,
	// §        but it was stale.
	FwdStale FwdReason = "stale"

	// §     *  partial - The cache was able to select a partial response for the
	// §        request, but it did not contain all of the requested ranges (or
	// §        the request was for the complete response).
	FwdPartial FwdReason = "partial"
)

// CacheStatus is one member of a Cache-Status field value.
type CacheStatus struct {
	Cache  string
	status Status
	fwd    FwdReason
	stored bool
	detail string
}

// New returns a CacheStatus for the named cache with no status set yet.
func New(cache string) *CacheStatus {
	return &CacheStatus{Cache: cache}
}

func (cs *CacheStatus) Hit() {
	cs.status = StatusHit
	cs.fwd = ""
}

func (cs *CacheStatus) Forward(reason FwdReason) {
	cs.status = StatusFwd
	cs.fwd = reason
}

// §  2.5.  The stored Parameter
// §
// §     "stored" indicates whether the cache stored the response (Section 3
// §     of [HTTP-CACHING]); a true value indicates that it did.  Only valid if
// §     fwd is present.
func (cs *CacheStatus) Stored(stored bool) {
	cs.stored = stored
}

// §  2.8.  The detail Parameter
// §
// §     "detail" allows implementations to convey additional information not
// §     captured in other parameters, such as implementation-specific states
// §     or other caching-related metrics.
func (cs *CacheStatus) Detail(detail string) {
	cs.detail = detail
}

func (cs *CacheStatus) Status() Status {
	return cs.status
}

func (cs *CacheStatus) Reason() FwdReason {
	return cs.fwd
}

func (cs *CacheStatus) IsStored() bool {
	return cs.stored
}

func (cs *CacheStatus) String() string {
	var b strings.Builder
	b.WriteString(cs.Cache)
	if cs.status == "" {
		return b.String()
	}
	fmt.Fprintf(&b, "; %s", cs.status)
	if cs.status == StatusFwd {
		if cs.fwd != "" {
			fmt.Fprintf(&b, "=%s", cs.fwd)
		}
		if cs.stored {
			b.WriteString("; stored")
		}
	}
	if cs.detail != "" {
		fmt.Fprintf(&b, "; detail=%s", cs.detail)
	}
	return b.String()
}
