// Package responsetransformer rewrites origin responses before they reach the accelerator,
// so that origins which do not send freshness information can still be cached.
package responsetransformer

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type Rules []Rule

// Rule matches GET and HEAD requests by path, prefix and query and sets
// the Cache-Control header (and any extra headers) of successful responses.
type Rule struct {
	Prefix   string            `yaml:"prefix"`
	Path     string            `yaml:"path"`
	Default  string            `yaml:"default"`
	Override string            `yaml:"override"`
	Query    map[string]string `yaml:"query"`
	Headers  map[string]string `yaml:"headers"`
}

// ModifyResponse returns a function suitable for httputil.ReverseProxy.ModifyResponse.
func (r Rules) ModifyResponse(logger *zerolog.Logger) func(*http.Response) error {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return func(res *http.Response) error {
		r.Apply(res, log)
		return nil
	}
}

// Apply applies the first matching rule to res. Only 200 responses are touched.
func (r Rules) Apply(res *http.Response, log zerolog.Logger) {
	if res.StatusCode != http.StatusOK || res.Request == nil {
		return
	}
	if rule := r.find(res.Request); rule != nil {
		log.Trace().Str("url", res.Request.URL.String()).Msg("Applying response rule")
		applyRuleToResponse(*rule, res.Header)
	}
}

func applyRuleToResponse(rule Rule, h http.Header) {
	if rule.Override != "" {
		h.Set("Cache-Control", rule.Override)
	} else if rule.Default != "" && h.Get("Cache-Control") == "" {
		h.Set("Cache-Control", rule.Default)
	}
	for name, value := range rule.Headers {
		h.Set(name, value)
	}
}

func (r Rules) find(req *http.Request) *Rule {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return nil
	}
rulesLoop:
	for i, rule := range r {
		if rule.Path != "" && rule.Path != req.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(req.URL.Path, rule.Prefix) {
			continue
		}
		if len(rule.Query) > 0 {
			qry := req.URL.Query()
			for name, value := range rule.Query {
				if value == "" && !qry.Has(name) {
					continue rulesLoop
				} else if value != "" && qry.Get(name) != value {
					continue rulesLoop
				}
			}
		}
		return &r[i]
	}
	return nil
}
