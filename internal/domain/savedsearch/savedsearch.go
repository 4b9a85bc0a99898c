package savedsearch

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Resource is the resource type name used for access checks and metrics.
const Resource = "saved_search"

// Limits on saved search fields.
const (
	MaxNameLength  = 128
	MaxQueryLength = 4096
)

// SavedSearch is a named query kept by one owner, ordered by position
// among that owner's saved searches (immutable value object).
type SavedSearch struct {
	id        string
	owner     string
	name      string
	query     string
	orderBy   string
	perPage   int
	position  int
	createdAt time.Time
}

// New validates and creates a SavedSearch. The position is assigned by the
// reorder service when the search is stored.
func New(id, owner, name, query, orderBy string, perPage int, createdAt time.Time) (SavedSearch, error) {
	if id == "" {
		return SavedSearch{}, fmt.Errorf("saved search ID is required")
	}
	if owner == "" {
		return SavedSearch{}, fmt.Errorf("owner is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return SavedSearch{}, fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return SavedSearch{}, fmt.Errorf("name too long (max %d)", MaxNameLength)
	}
	if len(query) > MaxQueryLength {
		return SavedSearch{}, fmt.Errorf("query too long (max %d bytes)", MaxQueryLength)
	}
	if perPage < 0 {
		return SavedSearch{}, fmt.Errorf("per_page must not be negative")
	}
	return SavedSearch{
		id:        id,
		owner:     owner,
		name:      name,
		query:     query,
		orderBy:   orderBy,
		perPage:   perPage,
		createdAt: createdAt.UTC(),
	}, nil
}

// Reconstruct creates a SavedSearch without validation (storage hydration).
func Reconstruct(
	id, owner, name, query, orderBy string, perPage, position int, createdAt time.Time,
) SavedSearch {
	return SavedSearch{
		id: id, owner: owner, name: name, query: query, orderBy: orderBy,
		perPage: perPage, position: position, createdAt: createdAt,
	}
}

// ID returns the saved search identifier.
func (s SavedSearch) ID() string { return s.id }

// Owner returns the principal name that owns the search.
func (s SavedSearch) Owner() string { return s.owner }

// Container groups saved searches for positioning; it is the owner.
func (s SavedSearch) Container() string { return s.owner }

// Name returns the display name.
func (s SavedSearch) Name() string { return s.name }

// Query returns the keyword query text.
func (s SavedSearch) Query() string { return s.query }

// OrderBy returns the raw order_by string; empty means default ordering.
func (s SavedSearch) OrderBy() string { return s.orderBy }

// PerPage returns the page size; 0 means unpaginated.
func (s SavedSearch) PerPage() int { return s.perPage }

// Position returns the zero-based position among the owner's searches.
func (s SavedSearch) Position() int { return s.position }

// CreatedAt returns the creation time.
func (s SavedSearch) CreatedAt() time.Time { return s.createdAt }

// WithPosition returns a copy at the given position.
func (s SavedSearch) WithPosition(p int) SavedSearch {
	s.position = p
	return s
}
