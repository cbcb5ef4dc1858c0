package accelerator_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/always-cache/accelerator"
	"github.com/always-cache/accelerator/cache"
	"github.com/always-cache/accelerator/policy"
)

func ExampleAccelerator_Middleware() {
	acc := accelerator.New(accelerator.Config{
		Policy: policy.NewAcceleratorPolicy(cache.NewMemoryStorage(), policy.DefaultOptions(), nil),
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=300")
		fmt.Fprintf(w, "Hello, %q", r.URL.Path)
	})
	cached := acc.Middleware(handler)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		cached.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/world", nil))
		fmt.Printf("%s %q\n", rec.Body.String(), rec.Header().Get(accelerator.CachedByHeader))
	}
	// Output:
	// Hello, "/world" ""
	// Hello, "/world" "always-cache/accelerator"
}
