package db

import (
	"context"
	"time"
)

// Store is the relational database facade used by repositories.
type Store interface {
	Pinger
	TableManager
	Close() error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TableManager provides table lifecycle operations.
type TableManager interface {
	CreateTable(ctx context.Context, def *TableDefinition) error
	TableExists(ctx context.Context, name string) (bool, error)
}
