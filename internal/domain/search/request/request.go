package request

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Parameter names accepted from users, primary name first.
var (
	QueryKeys   = []string{"q", "query"}
	OrderByKeys = []string{"order_by", "ob"}
	PerPageKeys = []string{"per_page", "pp"}
	PageKeys    = []string{"page", "p"}
)

// Params is raw, unvalidated user input for one search. Fields are nil when
// the parameter was not supplied. Query is normally a string; any other type
// makes the search fail closed.
type Params struct {
	Query   any
	OrderBy any
	PerPage any
	Page    any
}

// FromValues extracts search params from URL query values.
// order_by may repeat (order_by=name+desc&order_by=id) or use the bracketed
// mapping form (order_by[name]=desc).
func FromValues(v url.Values) Params {
	p := Params{
		Query:   firstValue(v, QueryKeys),
		PerPage: firstValue(v, PerPageKeys),
		Page:    firstValue(v, PageKeys),
	}

	for _, key := range OrderByKeys {
		if vals, ok := v[key]; ok && len(vals) > 0 {
			if len(vals) == 1 {
				p.OrderBy = vals[0]
			} else {
				p.OrderBy = append([]string(nil), vals...)
			}
			break
		}
		if m := bracketed(v, key); len(m) > 0 {
			p.OrderBy = m
			break
		}
	}
	return p
}

// FromMap extracts search params from a decoded JSON object or any other
// loosely typed map.
func FromMap(m map[string]any) Params {
	return Params{
		Query:   firstKey(m, QueryKeys),
		OrderBy: firstKey(m, OrderByKeys),
		PerPage: firstKey(m, PerPageKeys),
		Page:    firstKey(m, PageKeys),
	}
}

// QueryString returns the query text and whether it was supplied as a string.
func (p Params) QueryString() (string, bool) {
	s, ok := p.Query.(string)
	return s, ok
}

// WantsLimiting reports whether the caller supplied any pagination input.
func (p Params) WantsLimiting() bool {
	return p.PerPage != nil || p.Page != nil
}

// Pagination parses per_page and page. Input that is not an integer
// degrades: per_page becomes nil (disabled) and page becomes 1. Integers
// below 1 are returned as-is so the paginator can reject them.
func (p Params) Pagination() (perPage, page *int) {
	if n, ok := ParseInt(p.PerPage); ok {
		perPage = &n
	}
	if p.Page != nil {
		n, ok := ParseInt(p.Page)
		if !ok {
			n = 1
		}
		page = &n
	}
	return perPage, page
}

// ParseInt converts loosely typed numeric input (strings, JSON numbers,
// integral floats) to an int. Values that do not fit an int are rejected.
func ParseInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		if n >= float64(math.MaxInt) || n < float64(math.MinInt) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func firstValue(v url.Values, keys []string) any {
	for _, k := range keys {
		if vals, ok := v[k]; ok && len(vals) > 0 {
			return vals[0]
		}
	}
	return nil
}

func firstKey(m map[string]any, keys []string) any {
	for _, k := range keys {
		if val, ok := m[k]; ok && val != nil {
			return val
		}
	}
	return nil
}

// bracketed collects key[field]=dir entries into a mapping.
func bracketed(v url.Values, key string) map[string]string {
	var out map[string]string
	prefix := key + "["
	for k, vals := range v {
		if !strings.HasPrefix(k, prefix) || !strings.HasSuffix(k, "]") || len(vals) == 0 {
			continue
		}
		field := k[len(prefix) : len(k)-1]
		if field == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[field] = vals[0]
	}
	return out
}
