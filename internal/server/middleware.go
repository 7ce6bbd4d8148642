package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/hotseat/internal/setupflow"
)

type ctxKey int

const (
	ctxKeyFlow ctxKey = iota
	ctxKeyAdmin
)

// flowMiddleware resolves {flowID} against the registry. Unknown, cancelled
// and released flows are 404.
func flowMiddleware(flows *FlowRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := flows.Get(chi.URLParam(r, "flowID"))
			if err != nil {
				writeError(w, http.StatusNotFound, "flow not found")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyFlow, c)))
		})
	}
}

func flowFrom(r *http.Request) *setupflow.Controller {
	return r.Context().Value(ctxKeyFlow).(*setupflow.Controller)
}
