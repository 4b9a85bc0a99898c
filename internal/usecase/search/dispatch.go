package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/kwsearch/internal/db"
	"github.com/kailas-cloud/kwsearch/internal/domain"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/query"
)

// normalize lowercases keys and rejects nil handlers and keys that collide
// once lowercased.
func (h Handlers[T]) normalize() (Handlers[T], error) {
	out := make(Handlers[T], len(h))
	for k, fn := range h {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			return nil, domain.Misconfigured("empty keyword")
		}
		if fn == nil {
			return nil, domain.Misconfigured("keyword %q has no handler", k)
		}
		if _, dup := out[key]; dup {
			return nil, domain.Misconfigured("keyword %q registered twice", key)
		}
		out[key] = fn
	}
	return out, nil
}

// Keywords returns the registered keywords in lexical order.
func (h Handlers[T]) Keywords() []string {
	out := make([]string, 0, len(h))
	for k := range h {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dispatch applies the handler registered for each clause's keyword to the
// accumulating source. Clauses without a handler are ignored.
func Dispatch[T any](src db.Source[T], clauses []query.Clause, handlers Handlers[T]) db.Source[T] {
	for _, c := range clauses {
		h, ok := handlers[strings.ToLower(c.Keyword)]
		if !ok {
			continue
		}
		c.Values = stripValues(c.Values)
		src = h(src, c)
	}
	return src
}

func stripValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = query.StripWildcards(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LikeAny matches rows whose column matches any of the clause values as a
// LIKE pattern, with wildcards re-added per opts.
func LikeAny[T any](column string, opts ...query.WildcardOption) Handler[T] {
	return LikeAnyFunc[T](column, func(v string) string { return v }, opts...)
}

// LikeAnyFunc is LikeAny with a final pattern transformation, e.g. to match
// the start of any word: func(p string) string { return "% " + p }.
func LikeAnyFunc[T any](column string, pattern func(string) string, opts ...query.WildcardOption) Handler[T] {
	return func(src db.Source[T], c query.Clause) db.Source[T] {
		values := query.Strings(c.Values, opts...)
		conds := make([]filter.Condition, 0, len(values))
		for _, v := range values {
			cond, err := filter.NewLike(column, pattern(v))
			if err != nil {
				continue
			}
			conds = append(conds, cond)
		}
		return applyAny(src, c.Negated, conds)
	}
}

// Column pairs a column with the pattern transformation LikeColumns applies
// to each value. A nil Pattern uses the value as is.
type Column struct {
	Name    string
	Pattern func(string) string
}

// LikeColumns matches rows where any column matches any clause value. It
// suits bare terms, which name no single column.
func LikeColumns[T any](columns []Column, opts ...query.WildcardOption) Handler[T] {
	return func(src db.Source[T], c query.Clause) db.Source[T] {
		values := query.Strings(c.Values, opts...)
		conds := make([]filter.Condition, 0, len(values)*len(columns))
		for _, v := range values {
			for _, col := range columns {
				p := v
				if col.Pattern != nil {
					p = col.Pattern(v)
				}
				cond, err := filter.NewLike(col.Name, p)
				if err != nil {
					continue
				}
				conds = append(conds, cond)
			}
		}
		return applyAny(src, c.Negated, conds)
	}
}

// MatchAny matches rows whose column equals any of the clause values.
func MatchAny[T any](column string) Handler[T] {
	return func(src db.Source[T], c query.Clause) db.Source[T] {
		values := query.Strings(c.Values)
		conds := make([]filter.Condition, 0, len(values))
		for _, v := range values {
			cond, err := filter.NewMatch(column, v)
			if err != nil {
				continue
			}
			conds = append(conds, cond)
		}
		return applyAny(src, c.Negated, conds)
	}
}

// MatchNumbers matches rows whose integer column equals any of the clause
// values that parse as integers, or falls in any inclusive "lo..hi" range
// among them. Range bounds beyond ±2^53 are unusable, like other values
// that do not parse.
func MatchNumbers[T any](column string) Handler[T] {
	return func(src db.Source[T], c query.Clause) db.Source[T] {
		values := query.Strings(c.Values)
		conds := make([]filter.Condition, 0, len(values))
		for _, v := range values {
			cond, err := numberCondition(column, v)
			if err != nil {
				continue
			}
			conds = append(conds, cond)
		}
		return applyAny(src, c.Negated, conds)
	}
}

// maxExactBound is the largest magnitude a range bound may have; filter
// ranges carry float64 bounds, which are exact only up to 2^53.
const maxExactBound = 1 << 53

func numberCondition(column, v string) (filter.Condition, error) {
	if lo, hi, ok := query.NumberRange(v); ok {
		if !exactBound(lo) || !exactBound(hi) {
			return filter.Condition{}, fmt.Errorf("range bound out of range: %q", v)
		}
		r, err := filter.NewRangeFilter(nil, toFloat(lo), nil, toFloat(hi))
		if err != nil {
			return filter.Condition{}, err
		}
		return filter.NewRange(column, r)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return filter.Condition{}, err
	}
	return filter.NewMatch(column, n)
}

func exactBound(n *int64) bool {
	return n == nil || (*n <= maxExactBound && *n >= -maxExactBound)
}

func toFloat(n *int64) *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

// applyAny narrows src to rows matching any condition, or none of them when
// negated. A clause with no usable values matches nothing; negated, it
// excludes nothing.
//
// A negated clause larger than filter.MaxConditionsPerGroup is applied in
// chunks, each excluding its own conditions. A positive clause that large
// matches nothing, since one should group cannot hold it.
func applyAny[T any](src db.Source[T], negated bool, conds []filter.Condition) db.Source[T] {
	if len(conds) == 0 {
		if negated {
			return src
		}
		return src.None()
	}
	if !negated && len(conds) > filter.MaxConditionsPerGroup {
		return src.None()
	}
	for len(conds) > 0 {
		chunk := conds[:min(len(conds), filter.MaxConditionsPerGroup)]
		conds = conds[len(chunk):]
		expr, err := filter.AnyOf(negated, chunk...)
		if err != nil {
			return src.None()
		}
		src = src.Where(expr)
	}
	return src
}
