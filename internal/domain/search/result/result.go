package result

// Code identifies a search error condition.
type Code string

// Search error codes.
const (
	// CodeQueryBlank means no query parameter was supplied.
	CodeQueryBlank Code = "query_blank"
	// CodeQueryTooShort means the query is below the configured minimum length.
	CodeQueryTooShort Code = "query_too_short"
	// CodeTooManyItems means the match count exceeded the configured ceiling.
	CodeTooManyItems Code = "too_many_items"
	// CodeInvalidPerPage means per_page was below 1.
	CodeInvalidPerPage Code = "invalid_per_page"
	// CodeInvalidPage means page was below 1.
	CodeInvalidPage Code = "invalid_page"
)

// Error is a coded search problem reported alongside the outputs.
// Fatal errors abort the pipeline; non-fatal ones are informational.
type Error struct {
	Code    Code
	Message string
	Data    map[string]any
	Fatal   bool
}

// Errors is an ordered list of search errors.
type Errors []Error

// HasFatal reports whether any error aborted the pipeline.
func (e Errors) HasFatal() bool {
	for i := range e {
		if e[i].Fatal {
			return true
		}
	}
	return false
}

// Has reports whether an error with the given code was recorded.
func (e Errors) Has(code Code) bool {
	for i := range e {
		if e[i].Code == code {
			return true
		}
	}
	return false
}

// Codes returns the codes in recording order.
func (e Errors) Codes() []Code {
	out := make([]Code, len(e))
	for i := range e {
		out[i] = e[i].Code
	}
	return out
}

// Page is the output of a search: the final items, the number of matches
// before limiting and pagination, and any recorded errors.
type Page[T any] struct {
	Items      []T
	TotalCount int
	Errors     Errors
}

// Failed reports whether the search stopped on a fatal error.
func (p *Page[T]) Failed() bool { return p.Errors.HasFatal() }
