package kwsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
	searchuc "github.com/kailas-cloud/kwsearch/internal/usecase/search"
)

// UserService inserts and searches users.
type UserService struct {
	store  userStore
	search *searchuc.Service[domuser.User]
	obs    *observer
}

// Insert stores a new user and returns it with its assigned ID. A zero
// CreatedAt is set to the current time.
func (s *UserService) Insert(ctx context.Context, u User) (_ User, err error) {
	start := time.Now()
	defer func() { s.obs.observe("insert", start, err) }()

	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	d, err := domuser.New(u.Username, u.Name, u.Email, created)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w: %w", ErrInvalidRequest, err)
	}
	d, err = s.store.Insert(ctx, d)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return fromInternalUser(d), nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id int64) (_ User, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get", start, err) }()

	d, err := s.store.Get(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return fromInternalUser(d), nil
}

// Search runs a keyword query. Keywords: username, first_name, last_name,
// email and id.
func (s *UserService) Search(ctx context.Context, p SearchParams) (res SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observeSearch(start, res, err) }()

	page, err := s.search.Search(ctx, request.Params{
		Query:   p.Query,
		OrderBy: p.OrderBy,
		PerPage: p.PerPage,
		Page:    p.Page,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("search users: %w", err)
	}
	return fromInternalPage(page), nil
}

func fromInternalUser(u domuser.User) User {
	return User{
		ID:        u.ID(),
		Username:  u.Username(),
		Name:      u.Name(),
		Email:     u.Email(),
		CreatedAt: u.CreatedAt(),
	}
}

func fromInternalPage(p result.Page[domuser.User]) SearchResult {
	users := make([]User, len(p.Items))
	for i, u := range p.Items {
		users[i] = fromInternalUser(u)
	}
	var errs []SearchError
	for _, e := range p.Errors {
		errs = append(errs, SearchError{
			Code:    string(e.Code),
			Message: e.Message,
			Data:    e.Data,
			Fatal:   e.Fatal,
		})
	}
	return SearchResult{Users: users, TotalCount: p.TotalCount, Errors: errs}
}
