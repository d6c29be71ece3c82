package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petition-qc/app/models"
)

// BookStore persists petition books.
type BookStore struct {
	col *mongo.Collection
}

// FindOrCreate resolves a book by its label, creating it on first
// reference. Idempotent: concurrent calls for the same label converge on
// one document via the upsert plus the unique index on book_number.
func (s *BookStore) FindOrCreate(ctx context.Context, bookNumber string) (*models.Book, error) {
	filter := bson.M{"book_number": bookNumber}
	update := bson.M{"$setOnInsert": bson.M{
		"book_number": bookNumber,
		"created_at":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var book models.Book
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&book); err != nil {
		return nil, fmt.Errorf("find-or-create book %q: %w", bookNumber, err)
	}
	return &book, nil
}

// FindByNumber returns the book with the given label, or (nil, nil).
func (s *BookStore) FindByNumber(ctx context.Context, bookNumber string) (*models.Book, error) {
	var book models.Book
	err := s.col.FindOne(ctx, bson.M{"book_number": bookNumber}).Decode(&book)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("book by number %q: %w", bookNumber, err)
	}
	return &book, nil
}
