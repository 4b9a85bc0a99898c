package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/kwsearch/internal/db"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
	"github.com/kailas-cloud/kwsearch/internal/metrics"
)

// Instrumented wraps a Service and records Prometheus search metrics under
// a resource label.
type Instrumented[T any] struct {
	inner    *Service[T]
	resource string
}

// Instrument wraps svc. metrics.RegisterSearchMetrics must have been called
// for the values to be exported.
func Instrument[T any](svc *Service[T], resource string) *Instrumented[T] {
	return &Instrumented[T]{inner: svc, resource: resource}
}

// Service returns the wrapped service.
func (i *Instrumented[T]) Service() *Service[T] { return i.inner }

// Search runs p against the wrapped service's data source.
func (i *Instrumented[T]) Search(ctx context.Context, p request.Params) (result.Page[T], error) {
	start := time.Now()
	page, err := i.inner.Search(ctx, p)
	i.observe(page, err, time.Since(start))
	return page, err
}

// SearchIn runs p against src.
func (i *Instrumented[T]) SearchIn(ctx context.Context, src db.Source[T], p request.Params) (result.Page[T], error) {
	start := time.Now()
	page, err := i.inner.SearchIn(ctx, src, p)
	i.observe(page, err, time.Since(start))
	return page, err
}

func (i *Instrumented[T]) observe(page result.Page[T], err error, d time.Duration) {
	outcome := metrics.OutcomeOK
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case page.Failed():
		outcome = metrics.OutcomeFailed
	case len(page.Errors) > 0:
		outcome = metrics.OutcomeLimited
	}
	metrics.ObserveSearch(i.resource, outcome, codeStrings(page.Errors), page.TotalCount, d)
}
