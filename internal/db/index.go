package db

import (
	"errors"
	"strconv"
	"strings"
)

// ColumnType is a SQLite column type affinity.
type ColumnType string

const (
	// ColumnInteger stores signed integers.
	ColumnInteger ColumnType = "INTEGER"
	// ColumnText stores strings.
	ColumnText ColumnType = "TEXT"
	// ColumnReal stores floating point numbers.
	ColumnReal ColumnType = "REAL"
)

// Column describes a single column in a table schema.
type Column struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
	NotNull    bool
	NoCase     bool // COLLATE NOCASE; LIKE and = ignore ASCII case
	Default    string
}

// Index describes a secondary index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// TableDefinition is a complete table definition used by CREATE TABLE.
type TableDefinition struct {
	Name    string
	Columns []Column
	Indexes []Index
}

// Validate checks that the table definition is well-formed.
func (t *TableDefinition) Validate() error {
	if t.Name == "" {
		return errors.New("table name is required")
	}
	if !IsValidIdentifier(t.Name) {
		return errors.New("table name contains invalid characters")
	}
	if len(t.Columns) == 0 {
		return errors.New("at least one column is required")
	}

	seen := make(map[string]bool)
	primary := 0
	for i := range t.Columns {
		c := &t.Columns[i]
		if c.Name == "" {
			return errors.New("column name is required at index " + strconv.Itoa(i))
		}
		if !IsValidIdentifier(c.Name) {
			return errors.New("column name contains invalid characters: " + c.Name)
		}
		if seen[c.Name] {
			return errors.New("duplicate column name: " + c.Name)
		}
		seen[c.Name] = true
		if c.PrimaryKey {
			primary++
		}
	}
	if primary > 1 {
		return errors.New("at most one primary key column is supported")
	}

	for i := range t.Indexes {
		idx := &t.Indexes[i]
		if !IsValidIdentifier(idx.Name) {
			return errors.New("index name contains invalid characters: " + idx.Name)
		}
		if len(idx.Columns) == 0 {
			return errors.New("index " + idx.Name + " has no columns")
		}
		for _, col := range idx.Columns {
			if !seen[col] {
				return errors.New("index " + idx.Name + " references unknown column: " + col)
			}
		}
	}

	return nil
}

// HasColumn reports whether the table declares the named column.
func (t *TableDefinition) HasColumn(name string) bool {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return true
		}
	}
	return false
}

// ColumnNames returns the column names in declaration order.
func (t *TableDefinition) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// Statements renders the DDL needed to create the table and its indexes.
// Every statement is idempotent.
func (t *TableDefinition) Statements() []string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(t.Name)
	b.WriteString(" (")
	for i := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		writeColumn(&b, &t.Columns[i])
	}
	b.WriteString(")")

	stmts := []string{b.String()}
	for i := range t.Indexes {
		idx := &t.Indexes[i]
		kind := "INDEX"
		if idx.Unique {
			kind = "UNIQUE INDEX"
		}
		stmts = append(stmts, "CREATE "+kind+" IF NOT EXISTS "+idx.Name+
			" ON "+t.Name+" ("+strings.Join(idx.Columns, ", ")+")")
	}
	return stmts
}

func writeColumn(b *strings.Builder, c *Column) {
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(string(c.Type))
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	if c.NoCase {
		b.WriteString(" COLLATE NOCASE")
	}
}

// IsValidIdentifier returns true if s matches [a-zA-Z_][a-zA-Z0-9_]*.
// Only such identifiers are ever interpolated into SQL.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && r != '_' && (i == 0 || !isDigit) {
			return false
		}
	}
	return true
}

// String renders the DDL as a single script.
func (t *TableDefinition) String() string {
	return strings.Join(t.Statements(), ";\n") + ";"
}
