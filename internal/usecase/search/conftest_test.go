package search

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/kwsearch/internal/db"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/order"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/query"
)

// rec is the record type used by the in-memory source.
type rec struct {
	id       int64
	username string
	name     string
	created  int64
}

func (r rec) column(c string) any {
	switch c {
	case "id":
		return r.id
	case "username":
		return r.username
	case "name":
		return r.name
	case "created_at":
		return r.created
	default:
		panic("unknown column " + c)
	}
}

// calls counts data source executions across derived sources.
type calls struct {
	count int
	fetch int
}

// memSource is an in-memory db.Source that evaluates filters and orderings.
type memSource struct {
	rows     []rec
	where    []filter.Expression
	order    order.Spec
	limit    *int
	offset   *int
	none     bool
	calls    *calls
	countErr error
	fetchErr error
}

func newMemSource(rows []rec) memSource {
	return memSource{rows: rows, calls: &calls{}}
}

func (s memSource) Where(expr filter.Expression) db.Source[rec] {
	if expr.IsEmpty() {
		return s
	}
	s.where = append(append([]filter.Expression(nil), s.where...), expr)
	return s
}

func (s memSource) OrderBy(spec order.Spec) db.Source[rec] {
	s.order = append(append(order.Spec(nil), s.order...), spec...)
	return s
}

func (s memSource) Unordered() db.Source[rec] {
	s.order = nil
	return s
}

func (s memSource) Limit(n int) db.Source[rec] {
	s.limit = &n
	return s
}

func (s memSource) Offset(n int) db.Source[rec] {
	s.offset = &n
	return s
}

func (s memSource) Unpaginated() db.Source[rec] {
	s.limit, s.offset = nil, nil
	return s
}

func (s memSource) None() db.Source[rec] {
	s.none = true
	return s
}

func (s memSource) Count(_ context.Context) (int, error) {
	s.calls.count++
	if s.countErr != nil {
		return 0, s.countErr
	}
	return len(s.run()), nil
}

func (s memSource) Fetch(_ context.Context) ([]rec, error) {
	s.calls.fetch++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.run(), nil
}

func (s memSource) run() []rec {
	out := []rec{}
	if s.none {
		return out
	}
	for _, r := range s.rows {
		if s.matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, t := range s.order {
			c := compare(out[i].column(t.Column), out[j].column(t.Column))
			if c == 0 {
				continue
			}
			if t.Direction == order.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	if s.offset != nil {
		if *s.offset >= len(out) {
			out = out[:0]
		} else {
			out = out[*s.offset:]
		}
	}
	if s.limit != nil && *s.limit < len(out) {
		out = out[:*s.limit]
	}
	return out
}

func (s memSource) matches(r rec) bool {
	for _, expr := range s.where {
		for _, c := range expr.Must() {
			if !condMatches(r, c) {
				return false
			}
		}
		if len(expr.Should()) > 0 && !anyMatches(r, expr.Should()) {
			return false
		}
		if anyMatches(r, expr.MustNot()) {
			return false
		}
	}
	return true
}

func anyMatches(r rec, conds []filter.Condition) bool {
	for _, c := range conds {
		if condMatches(r, c) {
			return true
		}
	}
	return false
}

func condMatches(r rec, c filter.Condition) bool {
	v := r.column(c.Key())
	switch {
	case c.IsLike():
		return likeRegexp(c.Value().(string)).MatchString(fmt.Sprint(v))
	case c.IsMatch():
		return compare(v, c.Value()) == 0
	case c.IsRange():
		n, ok := v.(int64)
		return ok && inRange(float64(n), *c.Range())
	default:
		return false
	}
}

func inRange(n float64, r filter.Range) bool {
	return (r.GT() == nil || n > *r.GT()) &&
		(r.GTE() == nil || n >= *r.GTE()) &&
		(r.LT() == nil || n < *r.LT()) &&
		(r.LTE() == nil || n <= *r.LTE())
}

func likeRegexp(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "%")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?is)^` + strings.Join(parts, ".*") + `$`)
}

func compare(a, b any) int {
	switch av := a.(type) {
	case int64:
		var bv int64
		switch x := b.(type) {
		case int64:
			bv = x
		case int:
			bv = int64(x)
		default:
			return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	default:
		return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
	}
}

// --- Fixtures ---

// doeUsers returns doejohn, doejane and doejack created first, followed by
// n unrelated users.
func doeUsers(n int) []rec {
	rows := []rec{
		{id: 1, username: "doejohn", name: "John Doe", created: 1},
		{id: 2, username: "doejane", name: "Jane Doe", created: 2},
		{id: 3, username: "doejack", name: "Jack Doe", created: 3},
	}
	for i := 0; i < n; i++ {
		id := int64(len(rows) + 1)
		rows = append(rows, rec{
			id:       id,
			username: fmt.Sprintf("user%03d", i),
			name:     fmt.Sprintf("Person %03d Smith", i),
			created:  id,
		})
	}
	return rows
}

func recHandlers() Handlers[rec] {
	return Handlers[rec]{
		"username":   LikeAny[rec]("username", query.AppendWildcard()),
		"first_name": LikeAny[rec]("name", query.AppendWildcard()),
		"last_name":  LikeAnyFunc[rec]("name", func(p string) string { return "% " + p }, query.AppendWildcard()),
		"id":         MatchNumbers[rec]("id"),
	}
}

func recFields() order.Fields {
	return order.MustFields(
		order.Field{Name: "created_at", Column: "created_at"},
		order.Field{Name: "id", Column: "id"},
		order.Field{Name: "name", Column: "name"},
		order.Field{Name: "username", Column: "username"},
	)
}

func usernames(rows []rec) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.username
	}
	return out
}

func intPtr(n int) *int { return &n }
