package search

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kwsearch/internal/db"
	"github.com/kailas-cloud/kwsearch/internal/domain"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/order"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/query"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
	"github.com/kailas-cloud/kwsearch/internal/logger"
)

// Service runs keyword searches over one kind of record: parse, filter,
// order, then limit and paginate. It holds no per-request state and is safe
// for concurrent use.
type Service[T any] struct {
	source     db.Source[T]
	handlers   Handlers[T]
	fields     order.Fields
	maxItems   *int
	maxPerPage int
	minChars   int
	bare       mode.Mode
	log        *zap.Logger
}

// New creates a search service over src. handlers may be empty but not nil;
// fields must declare at least one sortable field.
func New[T any](src db.Source[T], handlers Handlers[T], fields order.Fields) (*Service[T], error) {
	if src == nil {
		return nil, domain.Misconfigured("data source is required")
	}
	if handlers == nil {
		return nil, domain.Misconfigured("keyword handlers are required")
	}
	if fields.IsEmpty() {
		return nil, domain.Misconfigured("sortable fields are required")
	}
	h, err := handlers.normalize()
	if err != nil {
		return nil, err
	}
	return &Service[T]{
		source:   src,
		handlers: h,
		fields:   fields,
		bare:     mode.Drop,
		log:      zap.NewNop(),
	}, nil
}

// WithMaxItems suppresses items when more than n rows match. n < 0 disables
// the ceiling.
func (s *Service[T]) WithMaxItems(n int) *Service[T] {
	c := *s
	if n < 0 {
		c.maxItems = nil
	} else {
		c.maxItems = &n
	}
	return &c
}

// WithMaxPerPage clamps per_page to n. n <= 0 disables clamping.
func (s *Service[T]) WithMaxPerPage(n int) *Service[T] {
	c := *s
	c.maxPerPage = n
	return &c
}

// WithMinCharacters rejects queries shorter than n characters.
func (s *Service[T]) WithMinCharacters(n int) *Service[T] {
	c := *s
	c.minChars = n
	return &c
}

// WithBareTerms sets the policy for tokens without a keyword.
func (s *Service[T]) WithBareTerms(m mode.Mode) *Service[T] {
	c := *s
	c.bare = m.OrDefault()
	return &c
}

// WithLogger sets the fallback logger used when the context carries none.
func (s *Service[T]) WithLogger(l *zap.Logger) *Service[T] {
	c := *s
	if l == nil {
		l = zap.NewNop()
	}
	c.log = l
	return &c
}

// Fields returns the sortable field whitelist.
func (s *Service[T]) Fields() order.Fields { return s.fields }

// Keywords returns the registered keywords.
func (s *Service[T]) Keywords() []string { return s.handlers.Keywords() }

// Search runs p against the service's data source.
func (s *Service[T]) Search(ctx context.Context, p request.Params) (result.Page[T], error) {
	return s.SearchIn(ctx, s.source, p)
}

// SearchIn runs p against src, which narrows or replaces the service's
// source for this call (for example, rows visible to one owner). Any limit
// or offset already on src is dropped; pagination comes from p alone.
//
// Coded problems with the user's input are returned in Page.Errors; the
// returned error is reserved for data source failures.
func (s *Service[T]) SearchIn(ctx context.Context, src db.Source[T], p request.Params) (result.Page[T], error) {
	log := s.loggerFor(ctx)

	if p.Query == nil {
		return fatal[T](0, result.Error{
			Code:    result.CodeQueryBlank,
			Message: "You must provide a query parameter (q or query).",
		}), nil
	}

	q, ok := p.QueryString()
	if !ok {
		// Fail closed: a query of the wrong type must not run as "match all".
		log.Debug("non-string query ignored", zap.String("type", fmt.Sprintf("%T", p.Query)))
		return result.Page[T]{Items: []T{}}, nil
	}

	if s.minChars > 0 && utf8.RuneCountInString(q) < s.minChars {
		return fatal[T](0, result.Error{
			Code:    result.CodeQueryTooShort,
			Message: fmt.Sprintf("The provided query is too short (minimum %d characters).", s.minChars),
			Data:    map[string]any{"min_characters": s.minChars},
		}), nil
	}

	var opts []query.Option
	if s.bare == mode.Route {
		opts = append(opts, query.KeepBareTerms())
	}
	clauses := query.Parse(q, opts...)
	filtered := Dispatch(src, clauses, s.handlers)

	spec := order.Normalize(p.OrderBy, s.fields)
	ordered := filtered.OrderBy(spec).Unpaginated()

	limits := s.limits(p)
	log.Debug("keyword search",
		zap.Int("clauses", len(clauses)),
		zap.Stringer("order", spec),
		zap.Bool("limited", !limits.IsZero()),
	)

	if limits.IsZero() {
		total, err := ordered.Count(ctx)
		if err != nil {
			return result.Page[T]{}, fmt.Errorf("count matches: %w", err)
		}
		items, err := ordered.Fetch(ctx)
		if err != nil {
			return result.Page[T]{}, fmt.Errorf("fetch matches: %w", err)
		}
		return result.Page[T]{Items: items, TotalCount: total}, nil
	}

	limited, err := LimitAndPaginate(ctx, ordered, limits)
	if err != nil {
		return result.Page[T]{}, err
	}
	if limited.Errors.HasFatal() {
		return result.Page[T]{Items: []T{}, TotalCount: limited.TotalCount, Errors: limited.Errors}, nil
	}

	items, err := limited.Items.Fetch(ctx)
	if err != nil {
		return result.Page[T]{}, fmt.Errorf("fetch matches: %w", err)
	}
	if len(limited.Errors) > 0 {
		log.Warn("keyword search limited",
			zap.Strings("codes", codeStrings(limited.Errors)),
			zap.Int("total_count", limited.TotalCount),
		)
	}
	return result.Page[T]{Items: items, TotalCount: limited.TotalCount, Errors: limited.Errors}, nil
}

func (s *Service[T]) limits(p request.Params) Limits {
	perPage, page := p.Pagination()
	if perPage != nil && s.maxPerPage > 0 && *perPage > s.maxPerPage {
		clamped := s.maxPerPage
		perPage = &clamped
	}
	return Limits{MaxItems: s.maxItems, PerPage: perPage, Page: page}
}

// loggerFor prefers the request-scoped logger. zap.NewNop, returned by
// logger.FromContext when none is stored, has every level disabled.
func (s *Service[T]) loggerFor(ctx context.Context) *zap.Logger {
	if l := logger.FromContext(ctx); l.Core().Enabled(zap.FatalLevel) {
		return l
	}
	return s.log
}

func fatal[T any](total int, e result.Error) result.Page[T] {
	e.Fatal = true
	return result.Page[T]{Items: []T{}, TotalCount: total, Errors: result.Errors{e}}
}

func codeStrings(errs result.Errors) []string {
	out := make([]string, len(errs))
	for i, c := range errs.Codes() {
		out[i] = string(c)
	}
	return out
}
