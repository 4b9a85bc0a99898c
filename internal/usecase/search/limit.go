package search

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/kwsearch/internal/db"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
)

// Limits bounds a search. Nil fields are disabled; Page defaults to 1.
type Limits struct {
	MaxItems *int
	PerPage  *int
	Page     *int
}

// IsZero reports whether no limit is requested.
func (l Limits) IsZero() bool {
	return l.MaxItems == nil && l.PerPage == nil && l.Page == nil
}

// Limited is the outcome of LimitAndPaginate.
type Limited[T any] struct {
	// Items is the source to fetch; it matches nothing when items are suppressed.
	Items db.Source[T]
	// TotalCount is the match count before limiting and pagination.
	TotalCount int
	Errors     result.Errors
}

// LimitAndPaginate counts src, enforces the MaxItems ceiling, then applies
// page-based slicing.
//
// Invalid pagination (PerPage or Page below 1) is fatal and checked before
// counting. Exceeding MaxItems is non-fatal: items are suppressed but the
// true total is reported. A page past the end yields no items and no error.
// Page > 1 without PerPage yields no items.
//
// The count and the later fetch are separate queries; they are consistent
// only if the caller runs both in one snapshot.
func LimitAndPaginate[T any](ctx context.Context, src db.Source[T], l Limits) (Limited[T], error) {
	if l.PerPage != nil && *l.PerPage < 1 {
		return Limited[T]{Items: src.None(), Errors: result.Errors{{
			Code:    result.CodeInvalidPerPage,
			Message: "Invalid page size",
			Data:    map[string]any{"per_page": *l.PerPage},
			Fatal:   true,
		}}}, nil
	}
	if l.Page != nil && *l.Page < 1 {
		return Limited[T]{Items: src.None(), Errors: result.Errors{{
			Code:    result.CodeInvalidPage,
			Message: "Invalid page number",
			Data:    map[string]any{"page": *l.Page},
			Fatal:   true,
		}}}, nil
	}

	src = src.Unpaginated()
	total, err := src.Count(ctx)
	if err != nil {
		return Limited[T]{}, fmt.Errorf("count matches: %w", err)
	}
	out := Limited[T]{TotalCount: total}

	if l.MaxItems != nil && total > *l.MaxItems {
		out.Items = src.None()
		out.Errors = append(out.Errors, result.Error{
			Code: result.CodeTooManyItems,
			Message: fmt.Sprintf("The number of matches exceeded the allowed limit of %d matches. "+
				"Please refine your query and try again.", *l.MaxItems),
			Data: map[string]any{"max_items": *l.MaxItems},
		})
		return out, nil
	}

	page := 1
	if l.Page != nil {
		page = *l.Page
	}

	switch {
	case l.PerPage != nil:
		perPage := *l.PerPage
		if page-1 > math.MaxInt/perPage {
			out.Items = src.None()
			break
		}
		out.Items = src.Limit(perPage).Offset(perPage * (page - 1))
	case page > 1:
		out.Items = src.None()
	default:
		out.Items = src
	}
	return out, nil
}
