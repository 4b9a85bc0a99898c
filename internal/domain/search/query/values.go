package query

import (
	"strconv"
	"strings"
)

// Wildcard is the LIKE wildcard character stripped from user input.
const Wildcard = "%"

type wildcardOptions struct {
	appendWildcard  bool
	prependWildcard bool
}

// WildcardOption configures Strings.
type WildcardOption func(*wildcardOptions)

// AppendWildcard turns every value into a prefix pattern ("doe" -> "doe%").
func AppendWildcard() WildcardOption {
	return func(o *wildcardOptions) { o.appendWildcard = true }
}

// PrependWildcard turns every value into a suffix pattern ("doe" -> "%doe").
func PrependWildcard() WildcardOption {
	return func(o *wildcardOptions) { o.prependWildcard = true }
}

// StripWildcards removes user-supplied wildcards from a single value.
func StripWildcards(v string) string {
	return strings.ReplaceAll(v, Wildcard, "")
}

// Strings strips user wildcards, splits on commas, drops empty values and then
// re-applies the requested wildcards.
func Strings(values []string, opts ...WildcardOption) []string {
	var o wildcardOptions
	for _, opt := range opts {
		opt(&o)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(StripWildcards(v), ",") {
			if part == "" {
				continue
			}
			if o.appendWildcard {
				part += Wildcard
			}
			if o.prependWildcard {
				part = Wildcard + part
			}
			out = append(out, part)
		}
	}
	return out
}

// Numbers returns the integer values among values, skipping anything that does
// not parse.
func Numbers(values []string) []int64 {
	var out []int64
	for _, s := range Strings(values) {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// RangeSeparator splits the bounds of a numeric range value ("5..9").
const RangeSeparator = ".."

// NumberRange parses an inclusive integer range "lo..hi". Either bound may be
// omitted ("5..", "..9") but not both. ok is false for anything else,
// including single numbers.
func NumberRange(v string) (lo, hi *int64, ok bool) {
	left, right, found := strings.Cut(strings.TrimSpace(v), RangeSeparator)
	if !found || (left == "" && right == "") {
		return nil, nil, false
	}
	parse := func(s string) (*int64, bool) {
		if s == "" {
			return nil, true
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false
		}
		return &n, true
	}
	if lo, ok = parse(left); !ok {
		return nil, nil, false
	}
	if hi, ok = parse(right); !ok {
		return nil, nil, false
	}
	return lo, hi, true
}
