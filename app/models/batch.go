package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BatchStatus is the lifecycle state of a data-entry batch.
type BatchStatus string

const (
	BatchStatusActive BatchStatus = "active"
	BatchStatusClosed BatchStatus = "closed"
)

// BatchCounters are the running per-classification totals on a batch.
// They summarize the batch's signature rows and are rewritten from those
// rows by the admin reconcile operation if ever found inconsistent.
type BatchCounters struct {
	Matches     int64 `bson:"matches" json:"matches"`
	AddressOnly int64 `bson:"address_only" json:"address_only"`
	NoMatch     int64 `bson:"no_match" json:"no_match"`
}

// Batch is one continuous data-entry session for a user, book and
// collector. At most one active batch may exist per enterer at any time;
// that invariant is enforced by a partial unique index on enterer_id
// filtered to status "active", not by application memory.
type Batch struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	BookID      primitive.ObjectID  `bson:"book_id" json:"book_id"`
	BookNumber  string              `bson:"book_number" json:"book_number"`
	CollectorID primitive.ObjectID  `bson:"collector_id" json:"collector_id"`
	EntererID   string              `bson:"enterer_id" json:"enterer_id"`
	Status      BatchStatus         `bson:"status" json:"status"`
	Counters    BatchCounters       `bson:"counters" json:"counters"`
	StartedAt   time.Time           `bson:"started_at" json:"started_at"`
	ClosedAt    *time.Time          `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
}

// IsActive reports whether the batch still accepts signatures.
func (b *Batch) IsActive() bool {
	return b.Status == BatchStatusActive
}
