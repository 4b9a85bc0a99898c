package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/kwsearch/internal/db"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/order"
)

// source is a value type; builder methods copy before modifying so that
// sources derived from a common parent never share backing arrays.
type source[T any] struct {
	table  *Table[T]
	where  []filter.Expression
	order  order.Spec
	limit  *int
	offset *int
	none   bool
	err    error
}

func (s source[T]) Where(expr filter.Expression) db.Source[T] {
	if expr.IsEmpty() {
		return s
	}
	for _, key := range expr.Keys() {
		s = s.check(key)
	}
	s.where = append(slices.Clip(s.where), expr)
	return s
}

func (s source[T]) OrderBy(spec order.Spec) db.Source[T] {
	for _, t := range spec {
		s = s.check(t.Column)
	}
	s.order = append(slices.Clip(s.order), spec...)
	return s
}

func (s source[T]) Unordered() db.Source[T] {
	s.order = nil
	return s
}

func (s source[T]) Limit(n int) db.Source[T] {
	if n < 0 && s.err == nil {
		s.err = fmt.Errorf("%w: negative limit %d", db.ErrInvalidSource, n)
	}
	s.limit = &n
	return s
}

func (s source[T]) Offset(n int) db.Source[T] {
	if n < 0 && s.err == nil {
		s.err = fmt.Errorf("%w: negative offset %d", db.ErrInvalidSource, n)
	}
	s.offset = &n
	return s
}

func (s source[T]) Unpaginated() db.Source[T] {
	s.limit, s.offset = nil, nil
	return s
}

func (s source[T]) None() db.Source[T] {
	s.none = true
	return s
}

func (s source[T]) Count(ctx context.Context) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.none {
		return 0, nil
	}

	where, args := s.compileWhere()
	var q string
	if s.paginated() {
		page, pageArgs := s.compilePage()
		q = "SELECT COUNT(*) FROM (SELECT 1 FROM " + s.table.def.Name + where + page + ")"
		args = append(args, pageArgs...)
	} else {
		q = "SELECT COUNT(*) FROM " + s.table.def.Name + where
	}

	var n int
	if err := s.table.store.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

func (s source[T]) Fetch(ctx context.Context) ([]T, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.none {
		return []T{}, nil
	}

	where, args := s.compileWhere()
	page, pageArgs := s.compilePage()
	args = append(args, pageArgs...)
	q := "SELECT " + selectList(s.table.def) + " FROM " + s.table.def.Name + where + s.compileOrder() + page

	rows, err := s.table.store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := s.table.scan(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return items, nil
}

// check records an error for columns the table does not declare. Only
// declared columns, which are validated identifiers, reach the SQL text.
func (s source[T]) check(column string) source[T] {
	if s.err == nil && !s.table.def.HasColumn(column) {
		s.err = fmt.Errorf("%w: %s.%s", db.ErrUnknownColumn, s.table.def.Name, column)
	}
	return s
}

func (s source[T]) paginated() bool {
	return s.limit != nil || s.offset != nil
}

// --- SQL building ---

func (s source[T]) compileWhere() (string, []any) {
	var (
		parts []string
		args  []any
	)
	for _, expr := range s.where {
		p, a := buildFilter(expr)
		if p == "" {
			continue
		}
		parts = append(parts, p)
		args = append(args, a...)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func (s source[T]) compileOrder() string {
	if len(s.order) == 0 {
		return ""
	}
	return " ORDER BY " + s.order.String()
}

// compilePage renders LIMIT/OFFSET. SQLite requires LIMIT before OFFSET;
// LIMIT -1 means unbounded.
func (s source[T]) compilePage() (string, []any) {
	if !s.paginated() {
		return "", nil
	}
	limit := -1
	if s.limit != nil {
		limit = *s.limit
	}
	offset := 0
	if s.offset != nil {
		offset = *s.offset
	}
	return " LIMIT ? OFFSET ?", []any{limit, offset}
}

func selectList(def *db.TableDefinition) string {
	return strings.Join(def.ColumnNames(), ", ")
}

// buildFilter translates a filter.Expression into a parenthesized SQL
// predicate: every must condition, at least one should condition and none of
// the must_not conditions.
func buildFilter(expr filter.Expression) (string, []any) {
	if expr.IsEmpty() {
		return "", nil
	}

	var (
		parts []string
		args  []any
	)

	for _, cond := range expr.Must() {
		p, a := buildCondition(cond)
		parts = append(parts, p)
		args = append(args, a...)
	}

	if p, a := buildGroup(expr.Should()); p != "" {
		parts = append(parts, p)
		args = append(args, a...)
	}

	if p, a := buildGroup(expr.MustNot()); p != "" {
		parts = append(parts, "NOT "+p)
		args = append(args, a...)
	}

	return "(" + strings.Join(parts, " AND ") + ")", args
}

func buildGroup(conditions []filter.Condition) (string, []any) {
	if len(conditions) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(conditions))
	var args []any
	for _, cond := range conditions {
		p, a := buildCondition(cond)
		parts = append(parts, p)
		args = append(args, a...)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func buildCondition(cond filter.Condition) (string, []any) {
	switch {
	case cond.IsLike():
		pattern, _ := cond.Value().(string)
		return cond.Key() + ` LIKE ? ESCAPE '\'`, []any{escapeLike(pattern)}
	case cond.IsRange():
		return buildRange(cond.Key(), *cond.Range())
	case cond.IsMatch():
		return cond.Key() + " = ?", []any{cond.Value()}
	default:
		return "0", nil
	}
}

func buildRange(key string, r filter.Range) (string, []any) {
	var (
		parts []string
		args  []any
	)
	add := func(op string, v *float64) {
		if v != nil {
			parts = append(parts, key+" "+op+" ?")
			args = append(args, *v)
		}
	}
	add(">", r.GT())
	add(">=", r.GTE())
	add("<", r.LT())
	add("<=", r.LTE())
	if len(parts) == 0 {
		return "1", nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", args
}

// escapeLike neutralizes '_' and the escape character. '%' is left alone: it
// only reaches a pattern when a handler adds it deliberately.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `_`, `\_`)

func escapeLike(pattern string) string {
	return likeEscaper.Replace(pattern)
}
