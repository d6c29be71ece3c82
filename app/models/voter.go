package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Voter is one row of the imported county voter file. Rows are immutable
// after import; the search and signature paths only ever read them.
type Voter struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SOSVoterID string             `bson:"sos_voterid" json:"sos_voterid"`
	CountyID   string             `bson:"county_id" json:"county_id"`

	FirstName  string `bson:"first_name" json:"first_name"`
	MiddleName string `bson:"middle_name,omitempty" json:"middle_name,omitempty"`
	LastName   string `bson:"last_name" json:"last_name"`

	ResidentialAddress1 string `bson:"residential_address1" json:"residential_address1"`
	ResidentialAddress2 string `bson:"residential_address2,omitempty" json:"residential_address2,omitempty"`
	ResidentialCity     string `bson:"residential_city" json:"residential_city"`
	ResidentialState    string `bson:"residential_state" json:"residential_state"`
	ResidentialZip      string `bson:"residential_zip" json:"residential_zip"`

	// RegisteredCity may differ from ResidentialCity for unincorporated areas.
	RegisteredCity string `bson:"registered_city,omitempty" json:"registered_city,omitempty"`

	DateOfBirth      *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	RegistrationDate *time.Time `bson:"registration_date,omitempty" json:"registration_date,omitempty"`

	PrecinctCode string `bson:"precinct_code,omitempty" json:"precinct_code,omitempty"`
	PrecinctName string `bson:"precinct_name,omitempty" json:"precinct_name,omitempty"`
	Ward         string `bson:"ward,omitempty" json:"ward,omitempty"`

	// Derived at import time. AddressNormalized is produced by the same
	// normalizer the search path uses; both trigram sets are precomputed so
	// the similarity lookup never re-shingles registry rows per request.
	AddressNormalized string   `bson:"address_normalized" json:"-"`
	AddressTrigrams   []string `bson:"address_trigrams" json:"-"`
	LastNameTrigrams  []string `bson:"last_name_trigrams,omitempty" json:"-"`
}

// FullName joins the non-empty name parts.
func (v *Voter) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{v.FirstName, v.MiddleName, v.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// FullAddress renders the residential address on one line.
func (v *Voter) FullAddress() string {
	parts := []string{v.ResidentialAddress1}
	if v.ResidentialAddress2 != "" {
		parts = append(parts, v.ResidentialAddress2)
	}
	parts = append(parts, v.ResidentialCity+", "+v.ResidentialState+" "+v.ResidentialZip)
	return strings.Join(parts, ", ")
}
