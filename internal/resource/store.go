// Package resource implements the generic CRUD endpoint shared by every
// directory resource.
package resource

import "context"

// Store persists records of one resource type. Implementations return
// httpx.ErrNotFound for unknown ids.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, item T) (T, error)
	// Update loads record id, lets fn modify it and persists the result as
	// one atomic step. An error from fn aborts the update unchanged.
	Update(ctx context.Context, id int64, fn func(*T) error) (T, error)
	Delete(ctx context.Context, id int64) error
}
