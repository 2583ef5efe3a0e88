// Package memstore implements the todo store in memory. It is used by
// tests and by `todoquery serve --memory` for local development, and
// evaluates the exact same filter/sort/group specifications as the
// MongoDB store.
package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spetr/todoquery/internal/query"
	"github.com/spetr/todoquery/pkg/types"
)

// Store holds todos in memory behind a read-write lock.
type Store struct {
	mu    sync.RWMutex
	todos []types.Todo
}

// New returns a store pre-populated with the given todos. Zero ids are
// replaced with fresh object ids.
func New(todos ...types.Todo) *Store {
	s := &Store{}
	_ = s.Insert(context.Background(), todos)
	return s
}

// Get looks up a single todo by its hex object id.
func (s *Store) Get(ctx context.Context, id string) (*types.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, types.ErrMalformedID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.todos {
		if s.todos[i].ID == oid {
			todo := s.todos[i]
			return &todo, nil
		}
	}
	return nil, types.ErrTodoNotFound
}

// List returns the todos matching the filter, ordered by the sort
// specification.
func (s *Store) List(ctx context.Context, filter query.Filter, sort query.Sort) ([]types.Todo, error) {
	s.mu.RLock()
	matched := []types.Todo{}
	for _, t := range s.todos {
		if filter.Matches(t) {
			matched = append(matched, t)
		}
	}
	s.mu.RUnlock()

	sort.Apply(matched)
	return matched, nil
}

// Group summarizes the full collection per the grouping spec.
func (s *Store) Group(ctx context.Context, spec query.GroupSpec) ([]types.TodoGroup, error) {
	s.mu.RLock()
	todos := make([]types.Todo, len(s.todos))
	copy(todos, s.todos)
	s.mu.RUnlock()

	return query.GroupTodos(todos, spec), nil
}

// Insert adds records, assigning fresh object ids where missing.
func (s *Store) Insert(ctx context.Context, todos []types.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range todos {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		s.todos = append(s.todos, t)
	}
	return nil
}

// Drop removes every record.
func (s *Store) Drop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = nil
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(ctx context.Context) error { return nil }
