package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is a petition book, identified by a free-form label unique per
// deployment. Books are created lazily on first reference.
type Book struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	BookNumber  string              `bson:"book_number" json:"book_number"`
	CollectorID *primitive.ObjectID `bson:"collector_id,omitempty" json:"collector_id,omitempty"`
	DateOut     *time.Time          `bson:"date_out,omitempty" json:"date_out,omitempty"`
	DateBack    *time.Time          `bson:"date_back,omitempty" json:"date_back,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}
