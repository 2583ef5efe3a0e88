// Package store defines the record-store capability consumed by the
// HTTP layer. Implementations translate the query package's
// specifications into their native query form.
package store

import (
	"context"

	"github.com/spetr/todoquery/internal/query"
	"github.com/spetr/todoquery/pkg/types"
)

// TodoStore is the read surface over the todos collection, plus the
// two maintenance operations the seeder needs. Implementations must be
// safe for concurrent use.
type TodoStore interface {
	// Get returns the todo with the given id. It returns
	// types.ErrMalformedID if id is not a well-formed identifier and
	// types.ErrTodoNotFound if no record matches.
	Get(ctx context.Context, id string) (*types.Todo, error)

	// List returns the todos matching the filter, ordered by the sort
	// specification. An empty filter matches every record.
	List(ctx context.Context, filter query.Filter, sort query.Sort) ([]types.Todo, error)

	// Group returns group summaries for the full, unfiltered
	// collection, ordered per the spec.
	Group(ctx context.Context, spec query.GroupSpec) ([]types.TodoGroup, error)

	// Insert adds records, assigning ids to any zero-id todos. Used by
	// the seeder; the HTTP API exposes no writes.
	Insert(ctx context.Context, todos []types.Todo) error

	// Drop removes every record.
	Drop(ctx context.Context) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close(ctx context.Context) error
}
