package db

// TableBuilder is a fluent builder for table definitions.
type TableBuilder struct {
	def TableDefinition
}

// NewTable starts building a table definition.
func NewTable(name string) *TableBuilder {
	return &TableBuilder{def: TableDefinition{Name: name}}
}

// IntegerKey adds an INTEGER PRIMARY KEY column (a rowid alias in SQLite).
func (b *TableBuilder) IntegerKey(name string) *TableBuilder {
	b.def.Columns = append(b.def.Columns, Column{
		Name:       name,
		Type:       ColumnInteger,
		PrimaryKey: true,
	})
	return b
}

// TextKey adds a TEXT PRIMARY KEY column.
func (b *TableBuilder) TextKey(name string) *TableBuilder {
	b.def.Columns = append(b.def.Columns, Column{
		Name:       name,
		Type:       ColumnText,
		PrimaryKey: true,
		NotNull:    true,
	})
	return b
}

// Integer adds a NOT NULL INTEGER column.
func (b *TableBuilder) Integer(name string) *TableBuilder {
	b.def.Columns = append(b.def.Columns, Column{
		Name:    name,
		Type:    ColumnInteger,
		NotNull: true,
	})
	return b
}

// IntegerWithDefault adds a NOT NULL INTEGER column with a default value.
func (b *TableBuilder) IntegerWithDefault(name, def string) *TableBuilder {
	b.def.Columns = append(b.def.Columns, Column{
		Name:    name,
		Type:    ColumnInteger,
		NotNull: true,
		Default: def,
	})
	return b
}

// Text adds a NOT NULL TEXT column.
func (b *TableBuilder) Text(name string) *TableBuilder {
	b.def.Columns = append(b.def.Columns, Column{
		Name:    name,
		Type:    ColumnText,
		NotNull: true,
	})
	return b
}

// TextWithOpts adds a TEXT column with custom nullability and collation.
func (b *TableBuilder) TextWithOpts(name string, notNull, noCase bool) *TableBuilder {
	b.def.Columns = append(b.def.Columns, Column{
		Name:    name,
		Type:    ColumnText,
		NotNull: notNull,
		NoCase:  noCase,
	})
	return b
}

// Real adds a NOT NULL REAL column.
func (b *TableBuilder) Real(name string) *TableBuilder {
	b.def.Columns = append(b.def.Columns, Column{
		Name:    name,
		Type:    ColumnReal,
		NotNull: true,
	})
	return b
}

// Index adds a secondary index named <table>_<first column>_idx.
func (b *TableBuilder) Index(columns ...string) *TableBuilder {
	return b.addIndex(columns, false)
}

// Unique adds a unique index named <table>_<first column>_key.
func (b *TableBuilder) Unique(columns ...string) *TableBuilder {
	return b.addIndex(columns, true)
}

func (b *TableBuilder) addIndex(columns []string, unique bool) *TableBuilder {
	suffix := "_idx"
	if unique {
		suffix = "_key"
	}
	name := b.def.Name
	if len(columns) > 0 {
		name += "_" + columns[0]
	}
	b.def.Indexes = append(b.def.Indexes, Index{
		Name:    name + suffix,
		Columns: append([]string(nil), columns...),
		Unique:  unique,
	})
	return b
}

// Build validates and returns the table definition.
func (b *TableBuilder) Build() (*TableDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild validates and returns the table definition, panicking on error.
func (b *TableBuilder) MustBuild() *TableDefinition {
	def, err := b.Build()
	if err != nil {
		panic("db: invalid table definition: " + err.Error())
	}
	return def
}
