// Package query parses keyword search strings.
//
// A query is a whitespace-separated list of clauses of the form
// [-]keyword:value1,value2. A leading '-' negates the clause. Values may be
// wrapped in double quotes to keep embedded spaces. Tokens without a colon are
// bare terms. Parsing never fails: malformed tokens are skipped.
package query

import (
	"strings"
	"unicode"
)

// BareKeyword is the reserved keyword under which bare terms are emitted
// when KeepBareTerms is set. It can never collide with a parsed keyword
// because it is not a valid identifier.
const BareKeyword = "-"

// Clause is one parsed keyword:value[,value] unit.
type Clause struct {
	Keyword string
	Negated bool
	Values  []string
}

// IsBare reports whether the clause came from a token without a keyword.
func (c Clause) IsBare() bool { return c.Keyword == BareKeyword }

type options struct {
	keepBare bool
}

// Option configures Parse.
type Option func(*options)

// KeepBareTerms emits tokens without a keyword as clauses under BareKeyword
// instead of dropping them.
func KeepBareTerms() Option {
	return func(o *options) { o.keepBare = true }
}

// Parse splits q into clauses. Keyword names are lowercased.
func Parse(q string, opts ...Option) []Clause {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var clauses []Clause
	for _, tok := range tokenize(q) {
		c, ok := parseToken(tok, o)
		if ok {
			clauses = append(clauses, c)
		}
	}
	return clauses
}

func parseToken(tok string, o options) (Clause, bool) {
	negated := false
	if len(tok) > 1 && tok[0] == '-' {
		negated = true
		tok = tok[1:]
	}

	keyword, rest, hasColon := strings.Cut(tok, ":")
	if !hasColon {
		if !o.keepBare {
			return Clause{}, false
		}
		values := splitValues(tok)
		if len(values) == 0 {
			return Clause{}, false
		}
		return Clause{Keyword: BareKeyword, Negated: negated, Values: values}, true
	}

	if !isIdentifier(keyword) {
		return Clause{}, false
	}
	return Clause{
		Keyword: strings.ToLower(keyword),
		Negated: negated,
		Values:  splitValues(rest),
	}, true
}

// tokenize splits on whitespace outside double quotes and removes the quotes.
func tokenize(q string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
		}
		cur.Reset()
		started = false
	}

	for _, r := range q {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return tokens
}

func splitValues(s string) []string {
	parts := strings.Split(s, ",")
	values := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && (i == 0 || !isDigit) {
			return false
		}
	}
	return true
}
