// Package policy decides what the accelerator may serve from and put into the cache.
package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/always-cache/accelerator/cache"
	"github.com/always-cache/accelerator/config"
	"github.com/always-cache/accelerator/header"
	"github.com/always-cache/accelerator/rfc9211"
)

// ErrUnknownPolicy is returned by New for an unsupported policy.type.
var ErrUnknownPolicy = errors.New("unknown policy")

// Policy decides cacheability and freshness.
// Negative decisions are not errors: Fetch returns a nil response along with the
// reason the request has to be forwarded, and Store returns a nil handler.
// Errors are storage faults only; callers treat them like the negative decisions.
type Policy interface {
	// Fetch returns the cached response for req, if there is a fresh one.
	Fetch(ctx context.Context, req *Request) (*Response, rfc9211.FwdReason, error)
	// Store returns a handler the response body is to be written to,
	// or nil if the response must not be stored.
	Store(ctx context.Context, status string, headers header.Fields, req *Request) (cache.ChunkHandler, error)
}

// NullPolicy never serves from and never stores into the cache.
type NullPolicy struct{}

func (NullPolicy) Fetch(context.Context, *Request) (*Response, rfc9211.FwdReason, error) {
	return nil, rfc9211.FwdBypass, nil
}

func (NullPolicy) Store(context.Context, string, header.Fields, *Request) (cache.ChunkHandler, error) {
	return nil, nil
}

// New creates the policy selected by the "policy.type" setting ("accelerator" or "null").
func New(storage cache.Storage, settings config.Settings, logger *zerolog.Logger) (Policy, error) {
	switch typ := settings.String("policy.type", "accelerator"); typ {
	case "accelerator", "":
		return NewAcceleratorPolicy(storage, OptionsFromSettings(settings), logger), nil
	case "null":
		return NullPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, typ)
	}
}
