package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petition-qc/app/models"
)

// CollectorStore persists collectors and their organizations.
type CollectorStore struct {
	col  *mongo.Collection
	orgs *mongo.Collection
}

// FindByID returns the collector, or (nil, nil) when unknown.
func (s *CollectorStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collector, error) {
	var c models.Collector
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("collector by id: %w", err)
	}
	return &c, nil
}

// List returns all collectors ordered for pick lists (last name, first
// name), mirroring the session setup page of the entry workflow.
func (s *CollectorStore) List(ctx context.Context) ([]models.Collector, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list collectors: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Collector
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode collectors: %w", err)
	}
	return out, nil
}

// Insert adds a collector.
func (s *CollectorStore) Insert(ctx context.Context, c *models.Collector) error {
	res, err := s.col.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("insert collector: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// InsertOrganization adds an organization.
func (s *CollectorStore) InsertOrganization(ctx context.Context, o *models.Organization) error {
	res, err := s.orgs.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}
