package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/petition-qc/app/models"
	"github.com/petition-qc/app/services"
)

// BatchStore persists data-entry batches. The single-active-batch-per-user
// invariant lives in the partial unique index created by EnsureIndexes,
// not here; this store only translates its violations.
type BatchStore struct {
	col *mongo.Collection
}

// FindActiveByEnterer returns the user's active batch, or (nil, nil).
func (s *BatchStore) FindActiveByEnterer(ctx context.Context, entererID string) (*models.Batch, error) {
	var b models.Batch
	err := s.col.FindOne(ctx, bson.M{
		"enterer_id": entererID,
		"status":     models.BatchStatusActive,
	}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active batch for %q: %w", entererID, err)
	}
	return &b, nil
}

// Insert opens a new batch. A duplicate-key violation on the partial
// unique active index means another start for the same user committed
// first; that loser surfaces as ErrSessionConflict for retry.
func (s *BatchStore) Insert(ctx context.Context, b *models.Batch) error {
	res, err := s.col.InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrSessionConflict
	}
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	b.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Close transitions a batch to closed and stamps the close time. Closing
// an already-closed batch is a no-op.
func (s *BatchStore) Close(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.BatchStatusActive},
		bson.M{"$set": bson.M{
			"status":    models.BatchStatusClosed,
			"closed_at": at,
		}},
	)
	if err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

// FindByID returns a batch, or (nil, nil).
func (s *BatchStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Batch, error) {
	var b models.Batch
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("batch by id: %w", err)
	}
	return &b, nil
}

// SetCounters overwrites a batch's counters. Used only by the reconcile
// path after re-aggregating that batch's signature rows.
func (s *BatchStore) SetCounters(ctx context.Context, id primitive.ObjectID, c models.BatchCounters) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"counters": c}},
	)
	if err != nil {
		return fmt.Errorf("set batch counters: %w", err)
	}
	return nil
}

// All returns every batch id with its stored counters, for reconcile.
func (s *BatchStore) All(ctx context.Context) ([]models.Batch, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Batch
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode batches: %w", err)
	}
	return out, nil
}
