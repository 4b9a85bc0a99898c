package chi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kwsearch/internal/logger"
)

// jsonRecoverer turns a handler panic into a 500 with the JSON error body.
// It runs outside RequestID, so it logs through the root logger.
// http.ErrAbortHandler is re-raised so net/http can abort the response.
func jsonRecoverer(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				log.Error("panic recovered",
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stacktrace"),
				)
				writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestEvent accumulates fields handlers attach to the request's
// canonical log line.
type requestEvent struct {
	mu     sync.Mutex
	fields []zap.Field
}

type eventKey struct{}

// annotate adds fields to the canonical log line of the request in ctx.
// Outside wideEventMiddleware it does nothing.
func annotate(ctx context.Context, fields ...zap.Field) {
	ev, ok := ctx.Value(eventKey{}).(*requestEvent)
	if !ok {
		return
	}
	ev.mu.Lock()
	ev.fields = append(ev.fields, fields...)
	ev.mu.Unlock()
}

// wideEventMiddleware stores a request-scoped logger tagged with the chi
// request ID, echoes the ID in X-Request-ID and, once the handler returns,
// emits one "http_request" line carrying every annotated field. Server
// errors log at warn; probes of /health and /metrics at debug.
func wideEventMiddleware(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLog := log.With(zap.String("request_id", requestID))
			ev := &requestEvent{}
			ctx := logger.ContextWithLogger(r.Context(), reqLog)
			ctx = context.WithValue(ctx, eventKey{}, ev)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			ev.mu.Lock()
			fields := append([]zap.Field{
				zap.String("method", r.Method),
				zap.String("route", routePattern(r)),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("ip", r.RemoteAddr),
			}, ev.fields...)
			ev.mu.Unlock()

			switch {
			case status >= http.StatusInternalServerError:
				reqLog.Warn("http_request", fields...)
			case r.URL.Path == "/health" || r.URL.Path == "/metrics":
				reqLog.Debug("http_request", fields...)
			default:
				reqLog.Info("http_request", fields...)
			}
		})
	}
}

// routePattern returns the matched chi route, or the raw path before routing.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
