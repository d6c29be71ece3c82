package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/petition-qc/app/models"
	"github.com/petition-qc/internal/normalizer"
	"github.com/petition-qc/internal/trigram"
)

func voterWithAddress(t *testing.T, seed byte, address string) models.Voter {
	t.Helper()
	var raw [12]byte
	raw[11] = seed
	norm := normalizer.Normalize(address)
	return models.Voter{
		ID:                  primitive.ObjectID(raw),
		ResidentialAddress1: address,
		AddressNormalized:   norm,
		AddressTrigrams:     trigram.Extract(norm),
	}
}

func TestMergeRankPrefixAboveSimilarity(t *testing.T) {
	// Registry from the spec example: two prefix matches for "123 main"
	// and one street that only matches via similarity.
	mainSt := voterWithAddress(t, 1, "123 Main St")
	mainStreet := voterWithAddress(t, 2, "123 Main Street")
	mianSt := voterWithAddress(t, 3, "125 Mian St")

	query := normalizer.Normalize("123 Main")
	queryTrigrams := trigram.Extract(query)

	prefix := []models.Voter{mainSt, mainStreet}
	similar := []SimilarityHit{
		{Voter: mianSt, Score: trigram.Similarity(queryTrigrams, mianSt.AddressTrigrams)},
		{Voter: mainSt, Score: trigram.Similarity(queryTrigrams, mainSt.AddressTrigrams)},
	}

	ranked := MergeRank(prefix, similar, 100)
	require.Len(t, ranked, 3)

	// Both prefix records rank above the similarity-only record.
	assert.Equal(t, models.TierPrefix, ranked[0].MatchTier)
	assert.Equal(t, models.TierPrefix, ranked[1].MatchTier)
	assert.Equal(t, mianSt.ID, ranked[2].Voter.ID)
	assert.Equal(t, models.TierSimilarity, ranked[2].MatchTier)
}

func TestMergeRankDeduplicates(t *testing.T) {
	v := voterWithAddress(t, 7, "88 Oak Ave")
	ranked := MergeRank(
		[]models.Voter{v},
		[]SimilarityHit{{Voter: v, Score: 0.42}},
		100,
	)
	require.Len(t, ranked, 1)
	assert.Equal(t, models.TierPrefix, ranked[0].MatchTier)
	assert.Equal(t, 0.42, ranked[0].SimilarityScore)
}

func TestMergeRankCap(t *testing.T) {
	var prefix []models.Voter
	for i := byte(1); i <= 10; i++ {
		prefix = append(prefix, voterWithAddress(t, i, "123 Main St"))
	}
	ranked := MergeRank(prefix, nil, 4)
	assert.Len(t, ranked, 4)
}

func TestMergeRankDeterministic(t *testing.T) {
	a := voterWithAddress(t, 1, "10 Elm St")
	b := voterWithAddress(t, 2, "11 Elm St")
	c := voterWithAddress(t, 3, "12 Elm Ct")

	similar := []SimilarityHit{
		{Voter: c, Score: 0.5},
		{Voter: b, Score: 0.5},
		{Voter: a, Score: 0.5},
	}

	first := MergeRank(nil, similar, 100)
	second := MergeRank(nil, similar, 100)
	require.Equal(t, first, second)

	// Equal scores fall back to id order.
	assert.Equal(t, a.ID, first[0].Voter.ID)
	assert.Equal(t, b.ID, first[1].Voter.ID)
	assert.Equal(t, c.ID, first[2].Voter.ID)
}

func TestMergeRankZeroLimit(t *testing.T) {
	assert.Nil(t, MergeRank([]models.Voter{voterWithAddress(t, 1, "1 A St")}, nil, 0))
}
