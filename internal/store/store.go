// Package store holds the MongoDB persistence for the bookkeeping side of
// the system: books, collectors, batches and signatures. The voter read
// path lives in internal/registry.
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Stores bundles the per-collection stores over one database handle.
type Stores struct {
	Books      *BookStore
	Collectors *CollectorStore
	Batches    *BatchStore
	Signatures *SignatureStore
}

// New builds the store set. The mongo client is needed alongside the
// database handle because signature recording runs a multi-document
// transaction on a client session.
func New(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Stores {
	return &Stores{
		Books:      &BookStore{col: db.Collection("books")},
		Collectors: &CollectorStore{col: db.Collection("collectors"), orgs: db.Collection("organizations")},
		Batches:    &BatchStore{col: db.Collection("batches")},
		Signatures: &SignatureStore{
			client:     client,
			signatures: db.Collection("signatures"),
			batches:    db.Collection("batches"),
			logger:     logger,
		},
	}
}

// EnsureIndexes creates the constraint indexes the session and signature
// invariants depend on. The partial unique index on active batches is the
// data-layer guard against two concurrently committed sessions for one
// user; it must exist before traffic is served.
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	if _, err := s.Books.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "book_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("books index: %w", err)
	}

	if _, err := s.Batches.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "enterer_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": "active"}),
	}); err != nil {
		return fmt.Errorf("active batch index: %w", err)
	}

	if _, err := s.Signatures.signatures.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "batch_id", Value: 1}}},
		{Keys: bson.D{{Key: "sos_voterid", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("signature indexes: %w", err)
	}

	return nil
}
