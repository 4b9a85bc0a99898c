package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kailas-cloud/kwsearch/internal/db"
)

// CreateTable creates the table and its indexes if they do not exist.
func (s *Store) CreateTable(ctx context.Context, def *db.TableDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("table %q: %w", def.Name, err)
	}
	stmts := def.Statements()
	return s.Tx(ctx, func(tx *sql.Tx) error {
		for i, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				op := db.OpCreateIndex
				if i == 0 {
					op = db.OpCreateTable
				}
				return &db.Error{Op: op, Err: err}
			}
		}
		return nil
	})
}

// TableExists probes sqlite_master for the named table.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &db.Error{Op: db.OpTableInfo, Err: err}
	}
	return true, nil
}

// Scanner is the subset of *sql.Row and *sql.Rows used by scan functions.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc decodes one row. Columns arrive in table declaration order.
type ScanFunc[T any] func(row Scanner) (T, error)

// Table binds a table definition to a row decoder.
type Table[T any] struct {
	store *Store
	def   *db.TableDefinition
	scan  ScanFunc[T]
}

// NewTable binds def to s. The table is not created; call Store.CreateTable.
func NewTable[T any](s *Store, def *db.TableDefinition, scan ScanFunc[T]) *Table[T] {
	return &Table[T]{store: s, def: def, scan: scan}
}

// Definition returns the table definition.
func (t *Table[T]) Definition() *db.TableDefinition { return t.def }

// Source returns an unfiltered, unordered source over every row.
func (t *Table[T]) Source() db.Source[T] {
	return source[T]{table: t}
}

// Get fetches the row whose column equals value.
func (t *Table[T]) Get(ctx context.Context, column string, value any) (T, error) {
	var zero T
	if !t.def.HasColumn(column) {
		return zero, fmt.Errorf("%w: %s.%s", db.ErrUnknownColumn, t.def.Name, column)
	}
	q := "SELECT " + selectList(t.def) + " FROM " + t.def.Name + " WHERE " + column + " = ?"
	item, err := t.scan(t.store.db.QueryRowContext(ctx, q, value))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, db.ErrRowNotFound
	}
	if err != nil {
		return zero, &db.Error{Op: db.OpSelect, Err: err}
	}
	return item, nil
}

// Renumber assigns positions 0..len(keys)-1 to the rows identified by keys,
// in the given order, inside one transaction.
func (t *Table[T]) Renumber(ctx context.Context, keyColumn, positionColumn string, keys []string) error {
	for _, col := range []string{keyColumn, positionColumn} {
		if !t.def.HasColumn(col) {
			return fmt.Errorf("%w: %s.%s", db.ErrUnknownColumn, t.def.Name, col)
		}
	}
	q := "UPDATE " + t.def.Name + " SET " + positionColumn + " = ? WHERE " + keyColumn + " = ?"
	return t.store.Tx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, q)
		if err != nil {
			return &db.Error{Op: db.OpUpdate, Err: err}
		}
		defer stmt.Close()
		for i, key := range keys {
			if _, err := stmt.ExecContext(ctx, i, key); err != nil {
				return &db.Error{Op: db.OpUpdate, Err: err}
			}
		}
		return nil
	})
}
