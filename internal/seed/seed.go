// Package seed loads fixture todo data into a store. Seeding is an
// operator action exposed through the CLI; the HTTP API stays
// read-only.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spetr/todoquery/internal/store"
	"github.com/spetr/todoquery/pkg/types"
)

// File replaces the store's contents with the todos read from a JSON
// array at path. Records without an _id get one assigned on insert.
// It returns the number of records loaded.
func File(ctx context.Context, st store.TodoStore, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var todos []types.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := st.Drop(ctx); err != nil {
		return 0, err
	}
	if err := st.Insert(ctx, todos); err != nil {
		return 0, err
	}
	return len(todos), nil
}
