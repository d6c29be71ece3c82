package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Classification is the three-way outcome of comparing an entered
// signature against the voter registry.
type Classification string

const (
	ClassificationPersonMatch Classification = "person_match"
	ClassificationAddressOnly Classification = "address_only"
	ClassificationNoMatch     Classification = "no_match"
)

// Valid reports whether c is one of the three known classifications.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationPersonMatch, ClassificationAddressOnly, ClassificationNoMatch:
		return true
	}
	return false
}

// Signature is the immutable record of one verification decision.
// Rows are never updated or deleted; a correction is a new row.
type Signature struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BatchID primitive.ObjectID `bson:"batch_id" json:"batch_id"`
	BookID  primitive.ObjectID `bson:"book_id" json:"book_id"`

	Classification Classification `bson:"classification" json:"classification"`

	// VoterID is a weak reference into the voters collection. Null for
	// no-match rows, and for address-only rows unless the caller supplied
	// a best-guess record. A stale id at record time is stored as null
	// rather than rejecting the classification.
	VoterID    *primitive.ObjectID `bson:"voter_id,omitempty" json:"voter_id,omitempty"`
	SOSVoterID string              `bson:"sos_voterid,omitempty" json:"sos_voterid,omitempty"`
	CountyID   string              `bson:"county_id,omitempty" json:"county_id,omitempty"`

	// Address fields copied from the voter record at entry time, so
	// reporting survives later registry re-imports.
	ResidentialAddress1 string `bson:"residential_address1,omitempty" json:"residential_address1,omitempty"`
	ResidentialAddress2 string `bson:"residential_address2,omitempty" json:"residential_address2,omitempty"`
	ResidentialCity     string `bson:"residential_city,omitempty" json:"residential_city,omitempty"`
	ResidentialState    string `bson:"residential_state,omitempty" json:"residential_state,omitempty"`
	ResidentialZip      string `bson:"residential_zip,omitempty" json:"residential_zip,omitempty"`
	RegisteredCity      string `bson:"registered_city,omitempty" json:"registered_city,omitempty"`

	// RawText is the search text as the operator entered it.
	RawText   string    `bson:"raw_text,omitempty" json:"raw_text,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
