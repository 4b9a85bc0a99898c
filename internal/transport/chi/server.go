package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kwsearch/internal/access"
	"github.com/kailas-cloud/kwsearch/internal/domain"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
	"github.com/kailas-cloud/kwsearch/internal/logger"
	healthuc "github.com/kailas-cloud/kwsearch/internal/usecase/health"
	saveduc "github.com/kailas-cloud/kwsearch/internal/usecase/savedsearch"
	searchuc "github.com/kailas-cloud/kwsearch/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the kwsearch HTTP API.
type Server struct {
	users         *searchuc.Instrumented[domuser.User]
	saved         *saveduc.Service[domuser.User]
	health        *healthuc.Service
	access        *access.Registry
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	users *searchuc.Instrumented[domuser.User],
	saved *saveduc.Service[domuser.User],
	health *healthuc.Service,
	registry *access.Registry,
	logger *zap.Logger,
) *Server {
	s := &Server{
		users:  users,
		saved:  saved,
		health: health,
		access: registry,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		forbiddenHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists),
		validationHandler,
	}
	return s
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// permission is an action on a resource type.
type permission struct {
	action   string
	resource string
}

// authorize checks every permission for the request's principal. It writes
// the error response and returns false on the first denial.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, perms ...permission) bool {
	p := PrincipalFromContext(r.Context())
	for _, perm := range perms {
		if err := s.access.RequireActionAllowed(perm.action, p, perm.resource); err != nil {
			logger.FromContext(r.Context()).Info("access denied",
				zap.String("principal", p.Name),
				zap.String("action", perm.action),
				zap.String("resource", perm.resource),
			)
			s.handleDomainError(w, err)
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidRequest,
		domain.ErrForbidden,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if errors.Is(err, sentinel) {
			writeError(w, status, code, msg)
			return true
		}
		return false
	}
}

// forbiddenHandler reports the denied action; it names only the caller's own
// identity and the requested action.
func forbiddenHandler(w http.ResponseWriter, err error, _ string) bool {
	var te *domain.TransgressionError
	if !errors.As(err, &te) {
		return false
	}
	writeError(w, http.StatusForbidden, ErrorCodeForbidden, te.Error())
	return true
}

// validationHandler passes validation messages through; they describe the
// caller's own input.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
