package chi

import (
	"time"

	domsaved "github.com/kailas-cloud/kwsearch/internal/domain/savedsearch"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
)

// ErrorCode is a machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeForbidden        ErrorCode = "forbidden"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeAlreadyExists    ErrorCode = "already_exists"
	ErrorCodeSearchFailed     ErrorCode = "search_failed"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-search error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchError is one coded search problem.
type SearchError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Fatal   bool           `json:"fatal"`
}

// SearchResponse is the search envelope.
type SearchResponse[T any] struct {
	Items      []T           `json:"items"`
	TotalCount int           `json:"total_count"`
	Errors     []SearchError `json:"errors"`
}

// User is the JSON form of a user.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedSearch is the JSON form of a saved search.
type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	OrderBy   string    `json:"order_by,omitempty"`
	PerPage   int       `json:"per_page,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSavedSearchRequest is the body of POST /api/v1/saved-searches.
type CreateSavedSearchRequest struct {
	Name    string `json:"name"`
	Query   string `json:"query"`
	OrderBy string `json:"order_by"`
	PerPage int    `json:"per_page"`
}

// ReorderRequest is the body of PUT /api/v1/saved-searches/order.
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

// ReorderResponse lists every saved search ID in its new order.
type ReorderResponse struct {
	IDs []string `json:"ids"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func userToJSON(u domuser.User) User {
	return User{
		ID:        u.ID(),
		Username:  u.Username(),
		Name:      u.Name(),
		Email:     u.Email(),
		CreatedAt: u.CreatedAt(),
	}
}

func savedSearchToJSON(s domsaved.SavedSearch) SavedSearch {
	return SavedSearch{
		ID:        s.ID(),
		Name:      s.Name(),
		Query:     s.Query(),
		OrderBy:   s.OrderBy(),
		PerPage:   s.PerPage(),
		Position:  s.Position(),
		CreatedAt: s.CreatedAt(),
	}
}

func searchResponse[T, J any](page result.Page[T], conv func(T) J) SearchResponse[J] {
	items := make([]J, len(page.Items))
	for i, it := range page.Items {
		items[i] = conv(it)
	}
	errs := make([]SearchError, len(page.Errors))
	for i, e := range page.Errors {
		errs[i] = SearchError{Code: string(e.Code), Message: e.Message, Data: e.Data, Fatal: e.Fatal}
	}
	return SearchResponse[J]{Items: items, TotalCount: page.TotalCount, Errors: errs}
}
