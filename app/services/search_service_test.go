package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/petition-qc/app/config"
	"github.com/petition-qc/app/models"
	"github.com/petition-qc/internal/normalizer"
	"github.com/petition-qc/internal/registry"
	"github.com/petition-qc/internal/trigram"
)

// fakeSearcher serves lookups from an in-memory voter slice using the
// same normalization and scoring the real store applies.
type fakeSearcher struct {
	voters    []models.Voter
	threshold float64
	calls     int
}

func newFakeSearcher(addresses ...string) *fakeSearcher {
	f := &fakeSearcher{threshold: 0.2}
	for i, addr := range addresses {
		var id primitive.ObjectID
		id[11] = byte(i + 1)
		normalized := normalizer.Normalize(addr)
		f.voters = append(f.voters, models.Voter{
			ID:                  id,
			ResidentialAddress1: addr,
			AddressNormalized:   normalized,
			AddressTrigrams:     trigram.Extract(normalized),
		})
	}
	return f
}

func (f *fakeSearcher) PrefixLookup(_ context.Context, query string, limit int) ([]models.Voter, error) {
	f.calls++
	var out []models.Voter
	for _, v := range f.voters {
		if len(v.AddressNormalized) >= len(query) && v.AddressNormalized[:len(query)] == query {
			out = append(out, v)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSearcher) SimilarityLookup(_ context.Context, query string, limit int) ([]registry.SimilarityHit, error) {
	f.calls++
	queryTrigrams := trigram.Extract(query)
	var hits []registry.SimilarityHit
	for _, v := range f.voters {
		if score := trigram.Similarity(queryTrigrams, v.AddressTrigrams); score >= f.threshold {
			hits = append(hits, registry.SimilarityHit{Voter: v, Score: score})
		}
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *fakeSearcher) LastNameLookup(_ context.Context, lastName string, limit int) ([]models.Voter, error) {
	f.calls++
	nameTrigrams := trigram.Extract(lastName)
	var out []models.Voter
	for _, v := range f.voters {
		if trigram.Similarity(nameTrigrams, v.LastNameTrigrams) > 0 {
			out = append(out, v)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func searchCfg() config.SearchCfg {
	return config.SearchCfg{
		ResultLimit:         100,
		SimilarityThreshold: 0.2,
		ScanFactor:          10,
		MinQueryLength:      3,
	}
}

func newSearchService(searcher RegistrySearcher, cache ResultCache) *SearchService {
	return NewSearchService(searcher, cache, searchCfg(), zap.NewNop())
}

func TestSearchShortQueryReturnsEmptyWithoutLookup(t *testing.T) {
	searcher := newFakeSearcher("123 Main St")
	svc := newSearchService(searcher, nil)

	for _, q := range []string{"", "  ", "1", "12", "!!"} {
		got, err := svc.SearchByAddress(context.Background(), q, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Zero(t, searcher.calls, "sub-minimum queries never reach storage")
}

func TestSearchPrefixHitsRankFirst(t *testing.T) {
	svc := newSearchService(newFakeSearcher(
		"123 Main St",
		"123 Main St Apt 2",
		"125 Mian St",
		"9 Oak Ave",
	), nil)

	got, err := svc.SearchByAddress(context.Background(), "123 Main", 10)
	require.NoError(t, err)
	require.Len(t, got, 3, "the unrelated address stays out")

	assert.Equal(t, models.TierPrefix, got[0].MatchTier)
	assert.Equal(t, models.TierPrefix, got[1].MatchTier)
	assert.Equal(t, models.TierSimilarity, got[2].MatchTier)
	assert.Equal(t, "125 Mian St", got[2].Voter.ResidentialAddress1,
		"the transposed street name arrives through the fuzzy path")
}

func TestSearchDeterministicAcrossRuns(t *testing.T) {
	searcher := newFakeSearcher("123 Main St", "123 Main St Apt 2", "125 Mian St")
	svc := newSearchService(searcher, nil)

	first, err := svc.SearchByAddress(context.Background(), "123 main", 10)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.SearchByAddress(context.Background(), "123 main", 10)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	addresses := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		addresses = append(addresses, "123 Main St")
	}
	svc := newSearchService(newFakeSearcher(addresses...), nil)

	got, err := svc.SearchByAddress(context.Background(), "123 main", 5)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestSearchUsesCache(t *testing.T) {
	searcher := newFakeSearcher("123 Main St")
	cache, err := NewMemoryCacheService(64)
	require.NoError(t, err)
	svc := newSearchService(searcher, cache)

	first, err := svc.SearchByAddress(context.Background(), "123 Main", 10)
	require.NoError(t, err)
	callsAfterFirst := searcher.calls

	second, err := svc.SearchByAddress(context.Background(), "123 Main", 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, searcher.calls, "second identical query is served from cache")

	// Different limit is a different cache entry.
	_, err = svc.SearchByAddress(context.Background(), "123 Main", 5)
	require.NoError(t, err)
	assert.Greater(t, searcher.calls, callsAfterFirst)
}

func TestSearchByNameAndAddress(t *testing.T) {
	searcher := newFakeSearcher("123 Main St", "125 Mian St")
	for i := range searcher.voters {
		last := []string{"Doe", "Smith"}[i]
		searcher.voters[i].FirstName = "Jane"
		searcher.voters[i].LastName = last
		searcher.voters[i].LastNameTrigrams = trigram.Extract(normalizer.NormalizeName(last))
	}
	svc := newSearchService(searcher, nil)

	got, err := svc.SearchByNameAndAddress(context.Background(), "Jane", "Doe", "123 Main St", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Doe", got[0].Voter.LastName)

	// Name-only retrieval still works without an address.
	got, err = svc.SearchByNameAndAddress(context.Background(), "", "Smith", "", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Smith", got[0].Voter.LastName)
}

func TestSearchByNameAndAddressNeedsIndexedField(t *testing.T) {
	searcher := newFakeSearcher("123 Main St")
	svc := newSearchService(searcher, nil)

	got, err := svc.SearchByNameAndAddress(context.Background(), "Jane", "", "", 10)
	require.NoError(t, err)
	assert.Empty(t, got, "a bare first name has no indexed retrieval path")
	assert.Zero(t, searcher.calls)
}
