package db

import (
	"context"

	"github.com/kailas-cloud/kwsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/order"
)

// Source is an immutable, not-yet-executed description of which rows to
// fetch. Every builder method returns a new Source and leaves the receiver
// untouched, so a Source may be shared between goroutines and extended
// independently by each request.
//
// Builder methods never fail. Invalid input (an unknown column, a negative
// limit) is recorded and surfaced by Count and Fetch.
type Source[T any] interface {
	// Where intersects the current filter with expr.
	Where(expr filter.Expression) Source[T]
	// OrderBy appends spec to the current ordering.
	OrderBy(spec order.Spec) Source[T]
	// Unordered drops any ordering.
	Unordered() Source[T]
	// Limit caps the number of rows fetched.
	Limit(n int) Source[T]
	// Offset skips the first n rows.
	Offset(n int) Source[T]
	// Unpaginated drops limit and offset.
	Unpaginated() Source[T]
	// None matches no rows.
	None() Source[T]

	// Count returns the number of rows matched, honouring limit and offset.
	Count(ctx context.Context) (int, error)
	// Fetch materializes the rows.
	Fetch(ctx context.Context) ([]T, error)
}
