// Package accelerator is an HTTP response-caching middleware.
//
// Requests are first offered to a cache policy. If it finds a fresh stored variant,
// the response is served from the cache with an added X-Cached-By header.
// Otherwise the request is forwarded to the upstream handler, whose response is
// streamed to the client while being captured for storage.
package accelerator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/always-cache/accelerator/cache"
	"github.com/always-cache/accelerator/header"
	"github.com/always-cache/accelerator/policy"
	pipe "github.com/always-cache/accelerator/pkg/response-pipe"
	"github.com/always-cache/accelerator/rfc9211"
)

const (
	// CachedByHeader is added to every response served from the cache.
	CachedByHeader = "X-Cached-By"
	// DefaultIdentifier is the default value of the CachedByHeader.
	DefaultIdentifier = "always-cache/accelerator"

	defaultBufferSize = 16
)

type Config struct {
	// Policy deciding what to serve from and store into the cache. Required.
	Policy policy.Policy
	// Logger to use. Nothing is logged if nil.
	Logger *zerolog.Logger
	// Value of the X-Cached-By header. Defaults to DefaultIdentifier.
	Identifier string
	// ErrorHandler writes the response for requests that failed before
	// anything was sent to the client. It defaults to a plain 502 Bad Gateway.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
	// Number of upstream events buffered between the upstream handler and the client.
	BufferSize int
}

type Accelerator struct {
	policy       policy.Policy
	log          zerolog.Logger
	identifier   string
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
	bufferSize   int
	stats        counters
}

// New initializes the accelerator.
func New(config Config) *Accelerator {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = zerolog.Nop()
	} else {
		logger = *config.Logger
	}
	if config.Identifier == "" {
		config.Identifier = DefaultIdentifier
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaultBufferSize
	}

	a := &Accelerator{
		policy:       config.Policy,
		log:          logger.With().Str("accelerator", config.Identifier).Logger(),
		identifier:   config.Identifier,
		errorHandler: config.ErrorHandler,
		bufferSize:   config.BufferSize,
	}
	if a.errorHandler == nil {
		a.errorHandler = a.badGateway
	}
	return a
}

// Middleware returns next wrapped by the accelerator.
func (a *Accelerator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.Serve(w, r, next); err != nil {
			a.handleError(w, r, err)
		}
	})
}

// Serve serves r from the cache or from next.
//
// The returned error tells why the request failed, if it did:
// ErrClientGone, a *ProtocolError or an *UpstreamError. Nothing has been written to w
// unless the error is ErrClientGone or an *UpstreamError with Started set.
// Failures of the cache storage are not returned; they only keep the response from being cached.
func (a *Accelerator) Serve(w http.ResponseWriter, r *http.Request, next http.Handler) error {
	req := policy.NewRequest(r)
	cs := rfc9211.New(a.identifier)
	log := a.log.With().Str("method", r.Method).Str("url", r.URL.String()).Logger()

	res, reason, err := a.policy.Fetch(r.Context(), req)
	if err != nil {
		a.stats.lookupErrors.Add(1)
		cs.Detail("lookup-error")
		log.Warn().Err(err).Msg("Could not look up cached response")
	}
	if res != nil {
		if code, err := policy.StatusCode(res.Status); err == nil {
			cs.Hit()
			a.stats.hits.Add(1)
			err := a.sendStoredResponse(w, res, code)
			a.logRequest(log, r, cs)
			return err
		}
		log.Error().Str("status", res.Status).Msg("Cached response has an invalid status")
		reason = rfc9211.FwdMiss
	}

	cs.Forward(reason)
	a.stats.misses.Add(1)
	err = a.forward(w, r, req, next, cs, log)
	a.logRequest(log, r, cs)
	return err
}

func (a *Accelerator) sendStoredResponse(w http.ResponseWriter, res *policy.Response, code int) error {
	h := w.Header()
	for _, f := range res.Header {
		h.Add(f.Name, f.Value)
	}
	h.Set(CachedByHeader, a.identifier)
	w.WriteHeader(code)
	for _, chunk := range res.Body {
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("%w: %v", ErrClientGone, err)
		}
	}
	return nil
}

// forward serves the request with next, streaming its response to the client
// and into the cache if the policy allows storing it.
func (a *Accelerator) forward(w http.ResponseWriter, r *http.Request, req *policy.Request, next http.Handler, cs *rfc9211.CacheStatus, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	p := pipe.New(a.bufferSize)
	go p.Run(next, r.WithContext(ctx))

	s := &stream{a: a, w: w, req: req, log: log}
	events := p.Events()
	for events != nil {
		select {
		case <-r.Context().Done():
			p.Abandon()
			a.stats.truncated.Add(1)
			return fmt.Errorf("%w: %v", ErrClientGone, r.Context().Err())
		case e, ok := <-events:
			if !ok {
				events = nil
				break
			}
			if err := s.handle(ctx, e); err != nil {
				p.Abandon()
				a.stats.truncated.Add(1)
				return err
			}
		}
	}

	if err := p.Err(); err != nil {
		if s.started {
			a.stats.truncated.Add(1)
		}
		return &UpstreamError{Started: s.started, Err: err}
	}
	if !s.started {
		return ErrNoResponseStart
	}
	if s.handler != nil {
		if err := s.handler.Close(); err != nil {
			a.stats.storeErrors.Add(1)
			log.Warn().Err(err).Msg("Could not store response")
			return nil
		}
		a.stats.stored.Add(1)
		cs.Stored(true)
	}
	return nil
}

// stream is the client side of a forwarded request.
type stream struct {
	a       *Accelerator
	w       http.ResponseWriter
	req     *policy.Request
	log     zerolog.Logger
	started bool
	pending [][]byte
	handler cache.ChunkHandler
}

func (s *stream) handle(ctx context.Context, e pipe.Event) error {
	switch e.Kind {
	case pipe.Start:
		if s.started {
			return nil
		}
		return s.start(ctx, e)
	case pipe.Chunk:
		// chunks before the status are replayed once it is known
		if !s.started {
			s.pending = append(s.pending, e.Chunk)
			return nil
		}
		return s.chunk(e.Chunk)
	case pipe.Flush:
		if f, ok := s.w.(http.Flusher); ok && s.started {
			f.Flush()
		}
	}
	return nil
}

func (s *stream) start(ctx context.Context, e pipe.Event) error {
	s.started = true
	status := policy.StatusLine(e.Status)
	handler, err := s.a.policy.Store(ctx, status, header.FromHTTP(e.Header), s.req)
	if err != nil {
		s.a.stats.storeErrors.Add(1)
		s.log.Warn().Err(err).Msg("Could not start storing response")
	}
	s.handler = handler

	copyHeader(s.w.Header(), e.Header)
	s.w.WriteHeader(e.Status)
	pending := s.pending
	s.pending = nil
	for _, chunk := range pending {
		if err := s.chunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

// chunk sends a body chunk to the client, then to the cache.
func (s *stream) chunk(b []byte) error {
	if _, err := s.w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", ErrClientGone, err)
	}
	if s.handler != nil {
		if err := s.handler.Write(b); err != nil {
			s.a.stats.storeErrors.Add(1)
			s.log.Warn().Err(err).Msg("Could not store response chunk")
			s.handler = nil
		}
	}
	return nil
}

func (a *Accelerator) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var upstreamErr *UpstreamError
	switch {
	case errors.Is(err, ErrClientGone):
		a.log.Debug().Err(err).Str("url", r.URL.String()).Msg("Client went away")
	case errors.As(err, &upstreamErr) && upstreamErr.Started:
		// the status is out, so the only way to signal the failure is to abort the connection
		a.log.Error().Err(err).Str("url", r.URL.String()).Msg("Upstream failed mid-response")
		panic(http.ErrAbortHandler)
	default:
		a.errorHandler(w, r, err)
	}
}

func (a *Accelerator) badGateway(w http.ResponseWriter, r *http.Request, err error) {
	a.log.Error().Err(err).Str("url", r.URL.String()).Msg("Upstream failed")
	http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
}

func (a *Accelerator) logRequest(log zerolog.Logger, r *http.Request, cs *rfc9211.CacheStatus) {
	log.Debug().
		Str("sourceIp", getRequestSourceIp(r)).
		Str("status", string(cs.Status())).
		Str("fwd", string(cs.Reason())).
		Bool("stored", cs.IsStored()).
		Str("cacheStatus", cs.String()).
		Msg("Sending response to client")
}

func getRequestSourceIp(r *http.Request) string {
	// RemoteAddr is in the format:
	// 1.2.3.4:10000 for ipv4
	// [1:2:3]:10000 for ipv6
	ipAndPort := r.RemoteAddr
	portSepIdx := strings.LastIndex(ipAndPort, ":")
	// if not found, return
	if portSepIdx < 0 {
		return ipAndPort
	}
	return ipAndPort[:portSepIdx]
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
