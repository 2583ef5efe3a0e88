// Package types contains the shared domain types for the todo query service.
package types

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Todo is a single todo record as stored in the todos collection.
// The ID is assigned by the store at creation and is immutable; every
// other field is caller-supplied free text (status is a boolean where
// true means complete).
type Todo struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Owner    string             `bson:"owner" json:"owner"`
	Status   bool               `bson:"status" json:"status"`
	Body     string             `bson:"body" json:"body"`
	Category string             `bson:"category" json:"category"`
}

// GroupMember identifies one todo inside a group summary. Value holds
// the field complementary to the grouping key: the category when
// grouping by owner, the owner when grouping by category.
type GroupMember struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Value string             `bson:"value" json:"value"`
}

// TodoGroup is one group summary produced by the grouped views: the
// distinct value of the grouping field, how many todos carry it, and
// the member descriptors. Count always equals len(Members).
type TodoGroup struct {
	Value   string        `bson:"_id" json:"_id"`
	Count   int           `bson:"count" json:"count"`
	Members []GroupMember `bson:"members" json:"members"`
}
