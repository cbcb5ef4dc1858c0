package policy

import (
	"strings"
	"time"

	"github.com/always-cache/accelerator/config"
)

type Options struct {
	// Request methods whose responses are served from and stored into the cache.
	AllowedMethods []string
	// Request headers every stored response varies on, in addition to its Vary header.
	AlwaysVaryOnHeaders []string
	// Environment attributes every stored response varies on.
	AlwaysVaryOnEnviron []string
	// Forward requests carrying "Pragma: no-cache" or "Cache-Control: no-cache".
	HonorShiftReload bool
	// Store responses to requests made over https.
	StoreHTTPSResponses bool
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

func DefaultOptions() Options {
	return Options{
		AllowedMethods:      []string{"GET"},
		AlwaysVaryOnEnviron: []string{EnvRequestMethod},
	}
}

// OptionsFromSettings reads the "policy.*" settings.
func OptionsFromSettings(settings config.Settings) Options {
	defaults := DefaultOptions()
	return Options{
		AllowedMethods:      settings.List("policy.allowed_methods", defaults.AllowedMethods),
		AlwaysVaryOnHeaders: settings.List("policy.always_vary_on_headers", defaults.AlwaysVaryOnHeaders),
		AlwaysVaryOnEnviron: settings.List("policy.always_vary_on_environ", defaults.AlwaysVaryOnEnviron),
		HonorShiftReload:    settings.Bool("policy.honor_shift_reload", defaults.HonorShiftReload),
		StoreHTTPSResponses: settings.Bool("policy.store_https_responses", defaults.StoreHTTPSResponses),
	}
}

func (o Options) normalize() Options {
	methods := make([]string, len(o.AllowedMethods))
	for i, m := range o.AllowedMethods {
		methods[i] = strings.ToUpper(m)
	}
	o.AllowedMethods = methods
	headers := make([]string, len(o.AlwaysVaryOnHeaders))
	for i, h := range o.AlwaysVaryOnHeaders {
		headers[i] = strings.ToLower(h)
	}
	o.AlwaysVaryOnHeaders = headers
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}
