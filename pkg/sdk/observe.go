package kwsearch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation statuses. A rejected search returned no users because of a
// fatal search error such as query_blank; it is not a database failure.
const (
	statusOK       = "ok"
	statusError    = "error"
	statusRejected = "rejected"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kwsearch",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by type and status (ok, error, rejected).",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kwsearch",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points c at the collector already
// registered under the same descriptor so several clients can share reg.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("kwsearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("kwsearch: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer records SDK operations. A nil observer, or one with neither
// logger nor registry, does nothing.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	o.record(op, status, time.Since(start), err)
}

// observeSearch is observe for searches, which can also be rejected.
func (o *observer) observeSearch(start time.Time, res SearchResult, err error) {
	status := statusOK
	switch {
	case err != nil:
		status = statusError
	case res.Failed():
		status = statusRejected
	}
	o.record("search", status, time.Since(start), err, slog.Int("total_count", res.TotalCount))
}

func (o *observer) record(op, status string, dur time.Duration, err error, attrs ...any) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	attrs = append(attrs, slog.String("op", op), slog.String("status", status), slog.Duration("duration", dur))
	if err != nil {
		o.logger.Warn("operation failed", append(attrs, slog.Any("error", err))...)
		return
	}
	o.logger.Debug("operation completed", attrs...)
}
