// Package savedsearch manages named queries kept per owner and runs them
// through the keyword search pipeline.
package savedsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/kwsearch/internal/domain"
	domsaved "github.com/kailas-cloud/kwsearch/internal/domain/savedsearch"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/order"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
	"github.com/kailas-cloud/kwsearch/internal/usecase/reorder"
	"github.com/kailas-cloud/kwsearch/internal/usecase/search"
)

// CreateParams holds the caller-supplied fields of a new saved search.
type CreateParams struct {
	Name    string
	Query   string
	OrderBy string
	PerPage int
}

// Service handles saved search operations. R is the record type the saved
// queries search over.
type Service[R any] struct {
	repo    Repository
	runner  Runner[R]
	list    *search.Service[domsaved.SavedSearch]
	reorder *reorder.Service[domsaved.SavedSearch]
	newID   func() string
	now     func() time.Time
}

// New creates a saved search service. list searches the owner's saved
// searches; runner executes their stored queries.
func New[R any](repo Repository, list *search.Service[domsaved.SavedSearch], runner Runner[R]) *Service[R] {
	return &Service[R]{
		repo:    repo,
		runner:  runner,
		list:    list,
		reorder: reorder.New[domsaved.SavedSearch](repo),
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// Create validates and stores a saved search at the end of the owner's list.
func (s *Service[R]) Create(ctx context.Context, owner string, p CreateParams) (domsaved.SavedSearch, error) {
	saved, err := domsaved.New(s.newID(), owner, p.Name, p.Query, p.OrderBy, p.PerPage, s.now())
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("validate saved search: %w: %w", domain.ErrInvalidRequest, err)
	}

	pos, err := s.reorder.Next(ctx, owner)
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("position saved search: %w", err)
	}
	saved = saved.WithPosition(pos)

	if err := s.repo.Insert(ctx, saved); err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("create saved search: %w", err)
	}
	return saved, nil
}

// Get returns one of the owner's saved searches. Searches of other owners
// are reported as not found.
func (s *Service[R]) Get(ctx context.Context, owner, id string) (domsaved.SavedSearch, error) {
	saved, err := s.repo.Get(ctx, id)
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("get saved search: %w", err)
	}
	if saved.Owner() != owner {
		return domsaved.SavedSearch{}, fmt.Errorf("get saved search %s: %w", id, domain.ErrNotFound)
	}
	return saved, nil
}

// List searches the owner's saved searches. A missing query lists them all.
func (s *Service[R]) List(ctx context.Context, owner string, p request.Params) (result.Page[domsaved.SavedSearch], error) {
	if p.Query == nil {
		p.Query = ""
	}
	page, err := s.list.SearchIn(ctx, s.repo.OwnedBy(owner), p)
	if err != nil {
		return result.Page[domsaved.SavedSearch]{}, fmt.Errorf("list saved searches: %w", err)
	}
	return page, nil
}

// Reorder moves ids to the front of the owner's list, in order, and returns
// the resulting order.
func (s *Service[R]) Reorder(ctx context.Context, owner string, ids []string) ([]string, error) {
	sorted, err := s.reorder.Sort(ctx, owner, ids)
	if err != nil {
		return nil, fmt.Errorf("reorder saved searches: %w", err)
	}
	return sorted, nil
}

// Delete removes one of the owner's saved searches and closes the gap it
// leaves in the positions.
func (s *Service[R]) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete saved search: %w", err)
	}
	if err := s.reorder.Compact(ctx, owner); err != nil {
		return fmt.Errorf("compact saved searches: %w", err)
	}
	return nil
}

// Run executes the stored query. page selects the result page when the
// search was saved with a page size; nil means the first page.
func (s *Service[R]) Run(ctx context.Context, owner, id string, page any) (result.Page[R], error) {
	saved, err := s.Get(ctx, owner, id)
	if err != nil {
		return result.Page[R]{}, err
	}

	p := request.Params{Query: saved.Query(), Page: page}
	if saved.OrderBy() != "" {
		p.OrderBy = saved.OrderBy()
	}
	if saved.PerPage() > 0 {
		p.PerPage = saved.PerPage()
	}

	out, err := s.runner.Search(ctx, p)
	if err != nil {
		return result.Page[R]{}, fmt.Errorf("run saved search %s: %w", id, err)
	}
	return out, nil
}

// ListService builds the search service used by List.
func ListService(repo Repository, handlers search.Handlers[domsaved.SavedSearch], fields order.Fields) (*search.Service[domsaved.SavedSearch], error) {
	return search.New(repo.Source(), handlers, fields)
}
