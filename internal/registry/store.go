// Package registry is the read path over the imported voter file: exact
// prefix retrieval, trigram similarity retrieval, and the merger that
// ranks the union into one bounded candidate list.
package registry

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
	"github.com/petition-qc/internal/trigram"
)

// StoreConfig bounds the two lookup paths.
type StoreConfig struct {
	// SimilarityThreshold is the minimum trigram score for the fuzzy path.
	SimilarityThreshold float64
	// ScanFactor bounds the fuzzy candidate fetch at limit*ScanFactor
	// documents, so a loose threshold cannot walk the whole registry.
	ScanFactor int
	// Timeout caps each individual lookup query.
	Timeout time.Duration
}

// Store executes read-only lookups against the voters collection. Search
// traffic holds no locks: the registry is only written by the import job,
// which excludes itself from serving traffic.
type Store struct {
	voters *mongo.Collection
	cfg    StoreConfig
	logger *zap.Logger
}

// NewStore wires a Store over db.voters.
func NewStore(db *mongo.Database, cfg StoreConfig, logger *zap.Logger) *Store {
	if cfg.ScanFactor <= 0 {
		cfg.ScanFactor = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &Store{
		voters: db.Collection("voters"),
		cfg:    cfg,
		logger: logger,
	}
}

// EnsureIndexes creates the two indexes the performance contract depends
// on: an ordered index on the normalized address (prefix seeks) and a
// multikey index on the precomputed trigram arrays (fuzzy retrieval).
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "address_normalized", Value: 1}}},
		{Keys: bson.D{{Key: "address_trigrams", Value: 1}}},
		{Keys: bson.D{{Key: "last_name_trigrams", Value: 1}}},
		{Keys: bson.D{{Key: "sos_voterid", Value: 1}}},
	}
	if _, err := s.voters.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("creating voter indexes: %w", err)
	}
	return nil
}

// PrefixLookup returns voters whose normalized address starts with the
// normalized query, in lexicographic address order, capped at limit.
func (s *Store) PrefixLookup(ctx context.Context, query string, limit int) ([]models.Voter, error) {
	if query == "" || limit <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	// Anchored regex on the indexed field; the driver plans this as an
	// index range scan, equivalent to a btree prefix seek.
	filter := bson.M{"address_normalized": bson.M{"$regex": "^" + regexp.QuoteMeta(query)}}
	opts := options.Find().
		SetSort(bson.D{{Key: "address_normalized", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := s.voters.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("prefix lookup: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Voter
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("prefix lookup decode: %w", err)
	}
	return out, nil
}

// SimilarityHit pairs a voter with its computed trigram score.
type SimilarityHit struct {
	Voter models.Voter
	Score float64
}

// SimilarityLookup returns voters whose normalized address scores at or
// above the configured threshold against the normalized query, best score
// first. The candidate fetch is bounded at limit*ScanFactor documents
// sharing at least one trigram with the query; scoring runs in-process
// against each candidate's precomputed trigram set.
func (s *Store) SimilarityLookup(ctx context.Context, query string, limit int) ([]SimilarityHit, error) {
	if query == "" || limit <= 0 {
		return nil, nil
	}
	queryTrigrams := trigram.Extract(query)
	if len(queryTrigrams) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	scanCap := int64(limit * s.cfg.ScanFactor)
	filter := bson.M{"address_trigrams": bson.M{"$in": queryTrigrams}}
	opts := options.Find().SetLimit(scanCap)

	cur, err := s.voters.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("similarity lookup: %w", err)
	}
	defer cur.Close(ctx)

	var hits []SimilarityHit
	scanned := 0
	for cur.Next(ctx) {
		var v models.Voter
		if err := cur.Decode(&v); err != nil {
			return nil, fmt.Errorf("similarity lookup decode: %w", err)
		}
		scanned++
		score := trigram.Similarity(queryTrigrams, v.AddressTrigrams)
		if score >= s.cfg.SimilarityThreshold {
			hits = append(hits, SimilarityHit{Voter: v, Score: score})
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("similarity lookup cursor: %w", err)
	}

	sortHits(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}

	s.logger.Debug("similarity lookup",
		zap.String("query", query),
		zap.Int("scanned", scanned),
		zap.Int("hits", len(hits)))
	return hits, nil
}

// LastNameLookup retrieves voters sharing last-name trigrams with the
// normalized fragment, bounded like the address fuzzy path. Scoring is
// left to the caller, which blends name metrics across fields.
func (s *Store) LastNameLookup(ctx context.Context, lastName string, limit int) ([]models.Voter, error) {
	if lastName == "" || limit <= 0 {
		return nil, nil
	}
	nameTrigrams := trigram.Extract(lastName)
	if len(nameTrigrams) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	filter := bson.M{"last_name_trigrams": bson.M{"$in": nameTrigrams}}
	opts := options.Find().SetLimit(int64(limit * s.cfg.ScanFactor))

	cur, err := s.voters.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("last-name lookup: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Voter
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("last-name lookup decode: %w", err)
	}
	return out, nil
}

// FindByID resolves one voter. Returns (nil, nil) when the id is unknown,
// so callers can fail soft on stale references.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voter, error) {
	var v models.Voter
	err := s.voters.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("voter by id: %w", err)
	}
	return &v, nil
}

// FindBySOSVoterID resolves one voter by state voter id.
func (s *Store) FindBySOSVoterID(ctx context.Context, sosVoterID string) (*models.Voter, error) {
	var v models.Voter
	err := s.voters.FindOne(ctx, bson.M{"sos_voterid": sosVoterID}).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("voter by sos id: %w", err)
	}
	return &v, nil
}

// BulkInsert writes an import chunk. Only the import job calls this, and
// never concurrently with search traffic.
func (s *Store) BulkInsert(ctx context.Context, voters []interface{}) error {
	if len(voters) == 0 {
		return nil
	}
	_, err := s.voters.InsertMany(ctx, voters, options.InsertMany().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("bulk insert voters: %w", err)
	}
	return nil
}

// Count returns the registry size.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.voters.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count voters: %w", err)
	}
	return n, nil
}

// DeleteAll truncates the registry ahead of a full re-import.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.voters.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("truncate voters: %w", err)
	}
	return nil
}
