package kit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const unmatchedRoute = "unmatched"

// RoutePattern labels a request by its chi route pattern so ids in the URL do
// not explode metric cardinality. Requests that matched no route share one
// label.
func RoutePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if rp := rc.RoutePattern(); rp != "" {
			return rp
		}
	}
	return unmatchedRoute
}
