package accelerator

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Stats counts what the accelerator did with the requests it has seen.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	// Responses committed to the cache.
	Stored uint64 `json:"stored"`
	// Storage failures while storing responses.
	StoreErrors uint64 `json:"storeErrors"`
	// Storage failures while looking up responses.
	LookupErrors uint64 `json:"lookupErrors"`
	// Forwarded responses that did not reach the client completely.
	Truncated uint64 `json:"truncated"`
}

type counters struct {
	hits, misses, stored, storeErrors, lookupErrors, truncated atomic.Uint64
}

// Stats returns a snapshot of the counters.
func (a *Accelerator) Stats() Stats {
	return Stats{
		Hits:         a.stats.hits.Load(),
		Misses:       a.stats.misses.Load(),
		Stored:       a.stats.stored.Load(),
		StoreErrors:  a.stats.storeErrors.Load(),
		LookupErrors: a.stats.lookupErrors.Load(),
		Truncated:    a.stats.truncated.Load(),
	}
}

// StatsHandler serves the counters as JSON.
func (a *Accelerator) StatsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(a.Stats()); err != nil {
			a.log.Error().Err(err).Msg("Could not write stats")
		}
	})
}
