package policy

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/always-cache/accelerator/cache"
	"github.com/always-cache/accelerator/header"
	"github.com/always-cache/accelerator/rfc9211"
)

var conditionalHeaders = []string{"If-Modified-Since", "If-None-Match", "If-Match"}

// maxLifetime is the largest max-age honored, see RFC 9111 section 1.2.2.
const maxLifetime = 2147483648 * time.Second

// AcceleratorPolicy serves fresh stored variants and stores cacheable responses.
//
// A request is served from the cache unless its method is not allowed,
// it is a shift-reload (when honored), a range request or a conditional request.
// A stored entry is served if all of its discriminators match the request and it is fresh.
//
// A response is stored if its status is 200 or 203, it carries no no-cache directive,
// its max-age (if any) is a positive integer and it does not vary on "*".
// When the response has no Date header, its date is assumed to be now.
type AcceleratorPolicy struct {
	storage cache.Storage
	opts    Options
	log     zerolog.Logger
}

func NewAcceleratorPolicy(storage cache.Storage, opts Options, logger *zerolog.Logger) *AcceleratorPolicy {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &AcceleratorPolicy{
		storage: storage,
		opts:    opts.normalize(),
		log:     logger.With().Str("component", "policy").Logger(),
	}
}

func (p *AcceleratorPolicy) Fetch(ctx context.Context, req *Request) (*Response, rfc9211.FwdReason, error) {
	if !p.allowed(req.method()) {
		return nil, rfc9211.FwdMethod, nil
	}
	if p.opts.HonorShiftReload && noCache(req.Header) {
		return nil, rfc9211.FwdRequest, nil
	}
	if req.Header.Has("Range") {
		return nil, rfc9211.FwdPartial, nil
	}
	for _, name := range conditionalHeaders {
		if req.Header.Has(name) {
			return nil, rfc9211.FwdRequest, nil
		}
	}

	entries, found, err := p.storage.Fetch(ctx, req.URL())
	if err != nil {
		return nil, rfc9211.FwdMiss, err
	}
	if !found {
		return nil, rfc9211.FwdUriMiss, nil
	}
	entry, ok := discriminate(entries, req)
	if !ok {
		return nil, rfc9211.FwdVaryMiss, nil
	}
	if !entry.Fresh(p.opts.Clock()) {
		return nil, rfc9211.FwdStale, nil
	}
	return &Response{
		Status: entry.Status,
		Header: entry.Header.Clone(),
		Body:   entry.Body,
	}, "", nil
}

func (p *AcceleratorPolicy) Store(ctx context.Context, status string, headers header.Fields, req *Request) (cache.ChunkHandler, error) {
	url := req.URL()
	skip := func(reason string) (cache.ChunkHandler, error) {
		p.log.Trace().Str("url", url).Str("status", status).Str("reason", reason).Msg("Not storing response")
		return nil, nil
	}

	if !p.allowed(req.method()) {
		return skip("method")
	}
	if !strings.HasPrefix(status, "200") && !strings.HasPrefix(status, "203") {
		return skip("status")
	}
	if req.Secure() && !p.opts.StoreHTTPSResponses {
		return skip("https")
	}
	if noCache(headers) {
		return skip("no-cache")
	}
	if maxAge, present, err := header.ParseCacheControl(valueOf(headers, "Cache-Control")).MaxAge(); present && (err != nil || maxAge <= 0) {
		return skip("max-age")
	}

	names := header.LowerList(valueOf(headers, "Vary"))
	names = append(names, p.opts.AlwaysVaryOnHeaders...)
	discriminators := make(cache.Discriminators, 0, len(names)+len(p.opts.AlwaysVaryOnEnviron))
	for _, name := range names {
		if name == "*" {
			return skip("vary")
		}
		if value, ok := req.Header.Value(name); ok {
			discriminators = append(discriminators, cache.Discriminator{Kind: cache.Vary, Name: name, Value: value})
		}
	}
	for _, name := range p.opts.AlwaysVaryOnEnviron {
		if value, ok := req.Environ[name]; ok {
			discriminators = append(discriminators, cache.Discriminator{Kind: cache.Environ, Name: name, Value: value})
		}
	}

	now := p.opts.Clock()
	date := responseDate(headers, now)
	entry := cache.Entry{
		URL:            url,
		Discriminators: discriminators.Canonical(),
		Expires:        date.Add(lifetime(headers, date)),
		Status:         status,
		Header:         header.EndToEnd(headers),
		Extras:         cache.Extras{"stored": header.FormatHTTPDate(now)},
	}
	p.log.Trace().Str("url", url).Time("expires", entry.Expires).Int("discriminators", len(entry.Discriminators)).Msg("Storing response")
	return p.storage.Store(ctx, entry)
}

func (p *AcceleratorPolicy) allowed(method string) bool {
	for _, m := range p.opts.AllowedMethods {
		if m == method {
			return true
		}
	}
	return false
}

// discriminate returns a stored entry whose discriminators all match req.
// Which entry is returned when several match is unspecified.
func discriminate(entries []cache.Entry, req *Request) (cache.Entry, bool) {
	for _, e := range entries {
		if matches(e.Discriminators, req) {
			return e, true
		}
	}
	return cache.Entry{}, false
}

func matches(discriminators cache.Discriminators, req *Request) bool {
	for _, d := range discriminators {
		var (
			value string
			ok    bool
		)
		switch d.Kind {
		case cache.Environ:
			value, ok = req.Environ[d.Name]
		case cache.Vary:
			value, ok = req.Header.Value(d.Name)
		}
		if !ok || value != d.Value {
			return false
		}
	}
	return true
}

func noCache(headers header.Fields) bool {
	for _, name := range []string{"Pragma", "Cache-Control"} {
		if strings.Contains(strings.ToLower(valueOf(headers, name)), "no-cache") {
			return true
		}
	}
	return false
}

// responseDate returns the Date of the response, or now if it is missing or invalid.
func responseDate(headers header.Fields, now time.Time) time.Time {
	if value, ok := headers.Value("Date"); ok {
		if date, err := header.ParseHTTPDate(value); err == nil {
			return date
		}
	}
	return now.UTC()
}

// lifetime returns the freshness lifetime of a response dated date:
// its max-age, else Expires minus date, else zero.
func lifetime(headers header.Fields, date time.Time) time.Duration {
	if maxAge, present, err := header.ParseCacheControl(valueOf(headers, "Cache-Control")).MaxAge(); present && err == nil {
		if maxAge > int64(maxLifetime/time.Second) {
			return maxLifetime
		}
		return time.Duration(maxAge) * time.Second
	}
	if value, ok := headers.Value("Expires"); ok {
		if expires, err := header.ParseHTTPDate(value); err == nil {
			if d := expires.Sub(date); d > 0 {
				return d
			}
		}
	}
	return 0
}

func valueOf(headers header.Fields, name string) string {
	value, _ := headers.Value(name)
	return value
}
