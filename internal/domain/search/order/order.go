// Package order turns user-supplied order_by input into a whitelisted,
// directionally correct sort order.
package order

import (
	"fmt"
	"strings"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection resolves "desc" (case-insensitive) to Desc and anything else to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Term is one sanitized column/direction pair.
type Term struct {
	Column    string
	Direction Direction
}

// String renders the term as "column ASC|DESC".
func (t Term) String() string {
	return t.Column + " " + strings.ToUpper(string(t.Direction))
}

// Spec is an ordered list of terms; the first term is the primary sort key.
type Spec []Term

// String renders s as an ORDER BY list.
func (s Spec) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Field declares one sortable field: the name accepted from users and the
// column it resolves to.
type Field struct {
	Name   string
	Column string
}

// Fields is the caller-declared whitelist of sortable fields. Declaration
// order is kept; the default field is the first declared one unless
// WithDefault names another.
type Fields struct {
	byName map[string]string
	names  []string
	def    Field
}

// NewFields validates and creates a sortable field whitelist.
// Names are matched case-insensitively.
func NewFields(fields ...Field) (Fields, error) {
	if len(fields) == 0 {
		return Fields{}, fmt.Errorf("at least one sortable field is required")
	}
	f := Fields{byName: make(map[string]string, len(fields))}
	for i, fd := range fields {
		name := strings.ToLower(strings.TrimSpace(fd.Name))
		if name == "" {
			return Fields{}, fmt.Errorf("sortable field name is required at index %d", i)
		}
		if fd.Column == "" {
			return Fields{}, fmt.Errorf("sortable field %q has no column", name)
		}
		if _, dup := f.byName[name]; dup {
			return Fields{}, fmt.Errorf("duplicate sortable field %q", name)
		}
		f.byName[name] = fd.Column
		f.names = append(f.names, name)
	}
	f.def = Field{Name: f.names[0], Column: f.byName[f.names[0]]}
	return f, nil
}

// FromColumns declares sortable fields whose names equal their columns.
func FromColumns(columns ...string) (Fields, error) {
	fields := make([]Field, len(columns))
	for i, c := range columns {
		fields[i] = Field{Name: c, Column: c}
	}
	return NewFields(fields...)
}

// MustFields calls NewFields and panics on error.
func MustFields(fields ...Field) Fields {
	f, err := NewFields(fields...)
	if err != nil {
		panic(err)
	}
	return f
}

// WithDefault makes the named field the fallback for unknown or missing input.
func (f Fields) WithDefault(name string) (Fields, error) {
	name = strings.ToLower(name)
	col, ok := f.byName[name]
	if !ok {
		return Fields{}, fmt.Errorf("default sort field %q is not sortable", name)
	}
	f.def = Field{Name: name, Column: col}
	return f, nil
}

// IsEmpty reports whether no fields were declared.
func (f Fields) IsEmpty() bool { return len(f.names) == 0 }

// Default returns the fallback field.
func (f Fields) Default() Field { return f.def }

// Lookup resolves a user-supplied name to its column.
func (f Fields) Lookup(name string) (string, bool) {
	col, ok := f.byName[strings.ToLower(strings.TrimSpace(name))]
	return col, ok
}

// Names returns the declared field names in declaration order.
func (f Fields) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Columns returns the distinct columns referenced by the whitelist.
func (f Fields) Columns() []string {
	seen := make(map[string]bool, len(f.names))
	var out []string
	for _, n := range f.names {
		c := f.byName[n]
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
