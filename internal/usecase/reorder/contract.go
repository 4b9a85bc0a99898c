package reorder

import "context"

// Item is a record kept in a numbered position inside a container.
type Item interface {
	ID() string
	Position() int
	Container() string
}

// Store defines the storage contract for positioned items.
type Store[T Item] interface {
	// Peers returns the container's items in position order.
	Peers(ctx context.Context, container string) ([]T, error)
	// Renumber stores positions 0..n-1 for ids, in order, atomically.
	Renumber(ctx context.Context, container string, ids []string) error
}
