// Package reorder keeps items numbered 0..n-1 within their container.
package reorder

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/kwsearch/internal/domain"
)

// Service assigns and rewrites item positions.
type Service[T Item] struct {
	store Store[T]
}

// New creates a reorder service.
func New[T Item](store Store[T]) *Service[T] {
	return &Service[T]{store: store}
}

// Next returns the position a new item appended to container should take.
func (s *Service[T]) Next(ctx context.Context, container string) (int, error) {
	peers, err := s.store.Peers(ctx, container)
	if err != nil {
		return 0, fmt.Errorf("load peers: %w", err)
	}
	next := 0
	for _, p := range peers {
		if p.Position() >= next {
			next = p.Position() + 1
		}
	}
	return next, nil
}

// Sort moves ids to the front of container in the given order. Peers not
// listed keep their relative order after them. It returns the resulting
// order of every peer.
func (s *Service[T]) Sort(ctx context.Context, container string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("sort: %w: no ids given", domain.ErrInvalidRequest)
	}
	peers, err := s.store.Peers(ctx, container)
	if err != nil {
		return nil, fmt.Errorf("load peers: %w", err)
	}

	known := make(map[string]bool, len(peers))
	for _, p := range peers {
		known[p.ID()] = true
	}
	listed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			return nil, fmt.Errorf("sort: item %s: %w", id, domain.ErrNotFound)
		}
		if listed[id] {
			return nil, fmt.Errorf("sort: %w: item %s listed twice", domain.ErrInvalidRequest, id)
		}
		listed[id] = true
	}

	sorted := make([]string, 0, len(peers))
	sorted = append(sorted, ids...)
	for _, p := range peers {
		if !listed[p.ID()] {
			sorted = append(sorted, p.ID())
		}
	}

	if err := s.store.Renumber(ctx, container, sorted); err != nil {
		return nil, fmt.Errorf("renumber: %w", err)
	}
	return sorted, nil
}

// Compact closes gaps left by removed items without changing their order.
func (s *Service[T]) Compact(ctx context.Context, container string) error {
	peers, err := s.store.Peers(ctx, container)
	if err != nil {
		return fmt.Errorf("load peers: %w", err)
	}
	ids := make([]string, len(peers))
	dense := true
	for i, p := range peers {
		ids[i] = p.ID()
		if p.Position() != i {
			dense = false
		}
	}
	if dense {
		return nil
	}
	if err := s.store.Renumber(ctx, container, ids); err != nil {
		return fmt.Errorf("renumber: %w", err)
	}
	return nil
}
