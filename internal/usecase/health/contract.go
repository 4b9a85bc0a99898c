package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SchemaChecker reports whether a table has been migrated.
type SchemaChecker interface {
	TableExists(ctx context.Context, name string) (bool, error)
}
