// Package mongodb implements the todo store on a MongoDB collection.
// Filtering, sorting, and grouping all execute inside the database;
// this package only translates the query package's specifications into
// filter documents and aggregation pipelines.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spetr/todoquery/internal/query"
	"github.com/spetr/todoquery/pkg/types"
)

// Options configures the MongoDB connection.
type Options struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Store is a TodoStore backed by a MongoDB collection.
type Store struct {
	client *mongo.Client
	todos  *mongo.Collection
}

// Connect establishes the client connection and verifies it with a
// ping before returning the store.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}

	return &Store{
		client: client,
		todos:  client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Get looks up a single todo by its hex object id.
func (s *Store) Get(ctx context.Context, id string) (*types.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, types.ErrMalformedID
	}

	var todo types.Todo
	err = s.todos.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&todo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrTodoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return &todo, nil
}

// List finds the todos matching the filter, sorted inside the
// database. Ties on the sort field are broken by _id so repeated
// queries return identical sequences.
func (s *Store) List(ctx context.Context, filter query.Filter, sort query.Sort) ([]types.Todo, error) {
	cur, err := s.todos.Find(ctx, filterDocument(filter), options.Find().SetSort(sortDocument(sort)))
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := []types.Todo{}
	if err := cur.All(ctx, &todos); err != nil {
		return nil, fmt.Errorf("failed to decode todos: %w", err)
	}
	return todos, nil
}

// Group runs the grouping aggregation pipeline: project the three
// fields the summaries need, push members grouped by the key field,
// and sort the summaries. Documents are sorted by _id before grouping
// so member order is deterministic.
func (s *Store) Group(ctx context.Context, spec query.GroupSpec) ([]types.TodoGroup, error) {
	sortField := "_id"
	if spec.ByCount {
		sortField = "count"
	}
	dir := 1
	if spec.Descending {
		dir = -1
	}

	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: spec.Key, Value: 1},
			{Key: spec.Complement, Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + spec.Key},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "members", Value: bson.D{{Key: "$push", Value: bson.D{
				{Key: "_id", Value: "$_id"},
				{Key: "value", Value: "$" + spec.Complement},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: sortField, Value: dir},
			{Key: "_id", Value: dir},
		}}},
	}

	cur, err := s.todos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to group todos: %w", err)
	}

	groups := []types.TodoGroup{}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode todo groups: %w", err)
	}
	return groups, nil
}

// Insert adds records, assigning fresh object ids where missing.
func (s *Store) Insert(ctx context.Context, todos []types.Todo) error {
	if len(todos) == 0 {
		return nil
	}
	docs := make([]any, len(todos))
	for i, t := range todos {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		docs[i] = t
	}
	if _, err := s.todos.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert todos: %w", err)
	}
	return nil
}

// Drop removes the whole collection.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.todos.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop todos: %w", err)
	}
	return nil
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// filterDocument translates the filter into a Mongo filter document.
// Text predicates become regex documents built from escaped literals,
// with the "i" option for case-insensitivity.
func filterDocument(f query.Filter) bson.D {
	doc := bson.D{}
	if f.Owner != nil {
		doc = append(doc, bson.E{Key: "owner", Value: primitive.Regex{
			Pattern: query.LiteralPattern(*f.Owner), Options: "i",
		}})
	}
	if f.Category != nil {
		doc = append(doc, bson.E{Key: "category", Value: primitive.Regex{
			Pattern: query.LiteralPattern(*f.Category), Options: "i",
		}})
	}
	if f.Status != nil {
		doc = append(doc, bson.E{Key: "status", Value: *f.Status})
	}
	if f.Body != nil {
		doc = append(doc, bson.E{Key: "body", Value: primitive.Regex{
			Pattern: query.SubstringPattern(*f.Body), Options: "i",
		}})
	}
	return doc
}

func sortDocument(s query.Sort) bson.D {
	dir := 1
	if s.Descending {
		dir = -1
	}
	return bson.D{
		{Key: s.Field, Value: dir},
		{Key: "_id", Value: dir},
	}
}
