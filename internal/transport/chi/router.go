package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kwsearch/internal/access"
	"github.com/kailas-cloud/kwsearch/internal/metrics"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	Logger     *zap.Logger
	Principals map[string]access.Principal // bearer token -> principal; empty disables auth
	Anonymous  access.Principal
}

// NewRouter mounts the server's routes behind recovery, request IDs,
// request logging, authentication and metrics.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(log))
	r.Use(BearerAuthMiddleware(opts.Principals, opts.Anonymous))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/search", s.SearchUsers)
		r.Post("/users/search", s.SearchUsersJSON)

		r.Route("/saved-searches", func(r chi.Router) {
			r.Get("/", s.ListSavedSearches)
			r.Post("/", s.CreateSavedSearch)
			r.Put("/order", s.ReorderSavedSearches)
			r.Get("/{id}", s.GetSavedSearch)
			r.Delete("/{id}", s.DeleteSavedSearch)
			r.Get("/{id}/results", s.RunSavedSearch)
		})
	})
	return r
}
