package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
	"github.com/petition-qc/app/services"
)

// SignatureStore persists the append-only signature rows. Rows are never
// updated or deleted here; corrections are recorded as new rows.
type SignatureStore struct {
	client     *mongo.Client
	signatures *mongo.Collection
	batches    *mongo.Collection
	logger     *zap.Logger
}

// counterField maps a classification onto the batch counter it bumps.
func counterField(c models.Classification) (string, error) {
	switch c {
	case models.ClassificationPersonMatch:
		return "counters.matches", nil
	case models.ClassificationAddressOnly:
		return "counters.address_only", nil
	case models.ClassificationNoMatch:
		return "counters.no_match", nil
	}
	return "", fmt.Errorf("unknown classification %q", c)
}

// Record inserts the signature and increments the matching counter on its
// batch inside one transaction, so a crash between the two writes can
// never leave counters out of sync with the rows they summarize. The
// counter update is conditioned on the batch still being active; if it was
// closed concurrently the transaction aborts with ErrNoActiveSession.
func (s *SignatureStore) Record(ctx context.Context, sig *models.Signature) (primitive.ObjectID, error) {
	field, err := counterField(sig.Classification)
	if err != nil {
		return primitive.NilObjectID, err
	}

	session, err := s.client.StartSession()
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: start session: %v", services.ErrStorageUnavailable, err)
	}
	defer session.EndSession(ctx)

	id, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := s.signatures.InsertOne(sc, sig)
		if err != nil {
			return nil, fmt.Errorf("insert signature: %w", err)
		}

		upd, err := s.batches.UpdateOne(sc,
			bson.M{"_id": sig.BatchID, "status": models.BatchStatusActive},
			bson.M{"$inc": bson.M{field: 1}},
		)
		if err != nil {
			return nil, fmt.Errorf("increment batch counter: %w", err)
		}
		if upd.MatchedCount == 0 {
			// Batch closed between the service's lookup and this commit.
			return nil, services.ErrNoActiveSession
		}

		return res.InsertedID.(primitive.ObjectID), nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return id.(primitive.ObjectID), nil
}

// CountByBatch re-aggregates the signature rows of one batch into fresh
// counters. Source of truth for the reconcile path.
func (s *SignatureStore) CountByBatch(ctx context.Context, batchID primitive.ObjectID) (models.BatchCounters, error) {
	var counters models.BatchCounters

	cur, err := s.signatures.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"batch_id": batchID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$classification",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return counters, fmt.Errorf("aggregate batch signatures: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Classification models.Classification `bson:"_id"`
			Count          int64                 `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return counters, fmt.Errorf("decode aggregate row: %w", err)
		}
		switch row.Classification {
		case models.ClassificationPersonMatch:
			counters.Matches = row.Count
		case models.ClassificationAddressOnly:
			counters.AddressOnly = row.Count
		case models.ClassificationNoMatch:
			counters.NoMatch = row.Count
		}
	}
	return counters, cur.Err()
}

// ProgressStats aggregates the verification progress counts the stats
// dashboard reads, split on whether the registered city matches the
// configured home city.
func (s *SignatureStore) ProgressStats(ctx context.Context, homeCity string) (*models.ProgressStats, error) {
	homePrefix := primitive.Regex{Pattern: "^" + homeCity, Options: "i"}

	cur, err := s.signatures.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"entered": bson.M{"$sum": 1},
			"matched_home": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$classification", models.ClassificationPersonMatch}},
					bson.M{"$regexMatch": bson.M{"input": bson.M{"$ifNull": bson.A{"$registered_city", ""}}, "regex": homePrefix}},
				}}, 1, 0,
			}}},
			"matched_other": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$classification", models.ClassificationPersonMatch}},
					bson.M{"$not": bson.A{bson.M{"$regexMatch": bson.M{"input": bson.M{"$ifNull": bson.A{"$registered_city", ""}}, "regex": homePrefix}}}},
				}}, 1, 0,
			}}},
			"address_only_home": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$classification", models.ClassificationAddressOnly}},
					bson.M{"$regexMatch": bson.M{"input": bson.M{"$ifNull": bson.A{"$registered_city", ""}}, "regex": homePrefix}},
				}}, 1, 0,
			}}},
			"address_only_other": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$classification", models.ClassificationAddressOnly}},
					bson.M{"$not": bson.A{bson.M{"$regexMatch": bson.M{"input": bson.M{"$ifNull": bson.A{"$registered_city", ""}}, "regex": homePrefix}}}},
				}}, 1, 0,
			}}},
			"unmatched": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$classification", models.ClassificationNoMatch}}, 1, 0,
			}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("progress stats: %w", err)
	}
	defer cur.Close(ctx)

	stats := &models.ProgressStats{}
	if cur.Next(ctx) {
		var row struct {
			Entered          int64 `bson:"entered"`
			MatchedHome      int64 `bson:"matched_home"`
			MatchedOther     int64 `bson:"matched_other"`
			AddressOnlyHome  int64 `bson:"address_only_home"`
			AddressOnlyOther int64 `bson:"address_only_other"`
			Unmatched        int64 `bson:"unmatched"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode progress stats: %w", err)
		}
		stats.Entered = row.Entered
		stats.MatchedHomeCity = row.MatchedHome
		stats.MatchedOther = row.MatchedOther
		stats.AddressOnlyHomeCity = row.AddressOnlyHome
		stats.AddressOnlyOther = row.AddressOnlyOther
		stats.Unmatched = row.Unmatched
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	if stats.Entered > 0 {
		stats.PercentVerified = float64(stats.MatchedHomeCity) * 100 / float64(stats.Entered)
		home := stats.MatchedHomeCity + stats.AddressOnlyHomeCity
		stats.PercentHomeCity = float64(home) * 100 / float64(stats.Entered)
	}
	return stats, nil
}
