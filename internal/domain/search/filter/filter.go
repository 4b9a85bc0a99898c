package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 64

// Expression is a structured filter with must/should/must_not boolean semantics.
// A row passes when it matches every must condition, at least one should
// condition (if any are present) and none of the must_not conditions.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// AnyOf builds an expression matching rows that satisfy at least one condition,
// or, when negated, rows that satisfy none of them.
func AnyOf(negated bool, conds ...Condition) (Expression, error) {
	if negated {
		return NewExpression(nil, nil, conds)
	}
	return NewExpression(nil, conds, nil)
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Keys returns every column referenced by the expression, in group order.
func (e Expression) Keys() []string {
	keys := make([]string, 0, len(e.must)+len(e.should)+len(e.mustNot))
	for _, group := range [][]Condition{e.must, e.should, e.mustNot} {
		for _, c := range group {
			keys = append(keys, c.key)
		}
	}
	return keys
}

// Kind discriminates condition types.
type Kind int

const (
	// KindMatch is an exact equality match.
	KindMatch Kind = iota
	// KindLike is a case-insensitive pattern match using '%' wildcards.
	KindLike
	// KindRange is a numeric range.
	KindRange
)

// Condition is a single filter clause: an exact match, a pattern or a numeric range.
type Condition struct {
	kind      Kind
	key       string
	value     any
	rangeExpr *Range
}

// NewMatch creates an exact match condition. value must be a string or an integer.
func NewMatch(key string, value any) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	switch v := value.(type) {
	case string:
		if v == "" {
			return Condition{}, fmt.Errorf("match value is required for key %q", key)
		}
	case int, int64:
	default:
		return Condition{}, fmt.Errorf("unsupported match value %T for key %q", value, key)
	}
	return Condition{kind: KindMatch, key: key, value: value}, nil
}

// NewLike creates a pattern condition.
func NewLike(key, pattern string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if pattern == "" {
		return Condition{}, fmt.Errorf("pattern is required for key %q", key)
	}
	return Condition{kind: KindLike, key: key, value: pattern}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{kind: KindRange, key: key, rangeExpr: &r}, nil
}

// Kind returns the condition type.
func (c Condition) Kind() Kind { return c.kind }

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the match value or the LIKE pattern.
func (c Condition) Value() any { return c.value }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.kind == KindMatch && c.value != nil }

// IsLike reports whether this is a pattern condition.
func (c Condition) IsLike() bool { return c.kind == KindLike }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.kind == KindRange && c.rangeExpr != nil }

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
