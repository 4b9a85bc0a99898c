package kwsearch

import "time"

// User is a user directory entry. ID is assigned on insert.
type User struct {
	ID        int64
	Username  string
	Name      string
	Email     string
	CreatedAt time.Time
}

// SearchParams carries raw caller input. Every field accepts the same loose
// shapes the HTTP API does: PerPage and Page may be ints or numeric
// strings, OrderBy a string, a []string or a map of field to direction.
// A nil Query reports query_blank; an empty string matches everything.
type SearchParams struct {
	Query   any
	OrderBy any
	PerPage any
	Page    any
}

// SearchError is a coded problem reported by a search. Fatal errors mean
// no users were returned.
type SearchError struct {
	Code    string
	Message string
	Data    map[string]any
	Fatal   bool
}

// SearchResult is one page of matching users.
type SearchResult struct {
	Users      []User
	TotalCount int // matches before pagination
	Errors     []SearchError
}

// Failed reports whether the search stopped on a fatal error.
func (r SearchResult) Failed() bool {
	for _, e := range r.Errors {
		if e.Fatal {
			return true
		}
	}
	return false
}
