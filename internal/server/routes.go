package server

import (
	"context"
	"net/http"
	"time"
)

// Routes names the paths served by NewMux. An empty Playground path leaves
// the IDE off its own route.
type Routes struct {
	Endpoint   string
	Playground string
	Health     string
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// NewMux mounts the GraphQL handler, the playground and a health probe.
func NewMux(h *Handler, routes Routes, check HealthCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(routes.Endpoint, h)
	if routes.Playground != "" {
		mux.Handle("GET "+routes.Playground, h.Playground())
	}
	if routes.Health != "" {
		mux.HandleFunc("GET "+routes.Health, func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if check != nil {
				if err := check(ctx); err != nil {
					writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()}, false)
					return
				}
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, false)
		})
	}
	return mux
}
