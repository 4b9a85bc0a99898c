package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrRowNotFound    = errors.New("db: row not found")
	ErrRowExists      = errors.New("db: row already exists")
	ErrTableNotFound  = errors.New("db: table not found")
	ErrUnknownColumn  = errors.New("db: unknown column")
	ErrInvalidSource  = errors.New("db: invalid source")
	ErrInvalidPattern = errors.New("db: invalid condition")
)

// Op constants name the SQL statement kind for error context.
const (
	OpCreateTable = "CREATE TABLE"
	OpCreateIndex = "CREATE INDEX"
	OpTableInfo   = "TABLE INFO"
	OpCount       = "SELECT COUNT"
	OpSelect      = "SELECT"
	OpInsert      = "INSERT"
	OpUpdate      = "UPDATE"
	OpDelete      = "DELETE"
	OpBegin       = "BEGIN"
	OpCommit      = "COMMIT"
	OpPing        = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
