package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/petition-qc/app/config"
	"github.com/petition-qc/app/models"
	"github.com/petition-qc/internal/normalizer"
	"github.com/petition-qc/internal/registry"
	"github.com/petition-qc/internal/trigram"
)

// RegistrySearcher is the read path over the voter registry the search
// service fans out to. Implemented by registry.Store.
type RegistrySearcher interface {
	PrefixLookup(ctx context.Context, query string, limit int) ([]models.Voter, error)
	SimilarityLookup(ctx context.Context, query string, limit int) ([]registry.SimilarityHit, error)
	LastNameLookup(ctx context.Context, lastName string, limit int) ([]models.Voter, error)
}

// SearchService answers address searches for the signature entry screen:
// normalize once, run the prefix and similarity lookups concurrently,
// merge into one ranked list, cache the result.
type SearchService struct {
	searcher RegistrySearcher
	cache    ResultCache
	cfg      config.SearchCfg
	logger   *zap.Logger
}

// NewSearchService wires the search service.
func NewSearchService(searcher RegistrySearcher, cache ResultCache, cfg config.SearchCfg, logger *zap.Logger) *SearchService {
	return &SearchService{
		searcher: searcher,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}
}

// SearchByAddress returns the ranked candidate list for a raw address
// fragment. A query that normalizes below the minimum length returns an
// empty list without touching storage.
func (ss *SearchService) SearchByAddress(ctx context.Context, rawQuery string, limit int) ([]models.VoterMatch, error) {
	if limit <= 0 || limit > ss.cfg.ResultLimit {
		limit = ss.cfg.ResultLimit
	}

	query := normalizer.Normalize(rawQuery)
	if len(query) < ss.cfg.MinQueryLength {
		return []models.VoterMatch{}, nil
	}

	cacheKey := fmt.Sprintf("addr:%s:%d", query, limit)
	if ss.cache != nil {
		if cached, found, err := ss.cache.Get(ctx, cacheKey); err == nil && found {
			return cached, nil
		}
	}

	// The two lookups are independent reads against the same registry
	// snapshot; run them concurrently.
	type prefixOut struct {
		voters []models.Voter
		err    error
	}
	type similarOut struct {
		hits []registry.SimilarityHit
		err  error
	}
	prefixCh := make(chan prefixOut, 1)
	similarCh := make(chan similarOut, 1)

	go func() {
		voters, err := ss.searcher.PrefixLookup(ctx, query, limit)
		prefixCh <- prefixOut{voters, err}
	}()
	go func() {
		hits, err := ss.searcher.SimilarityLookup(ctx, query, limit)
		similarCh <- similarOut{hits, err}
	}()

	prefix := <-prefixCh
	similar := <-similarCh
	if prefix.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, prefix.err)
	}
	if similar.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, similar.err)
	}

	ranked := registry.MergeRank(prefix.voters, similar.hits, limit)

	if ss.cache != nil {
		if err := ss.cache.Set(ctx, cacheKey, ranked); err != nil {
			ss.logger.Warn("caching search result failed", zap.Error(err))
		}
	}

	ss.logger.Debug("address search",
		zap.String("query", query),
		zap.Int("prefix_hits", len(prefix.voters)),
		zap.Int("similarity_hits", len(similar.hits)),
		zap.Int("returned", len(ranked)))
	return ranked, nil
}

// maxNameEditDistance gates last-name candidates so a shared trigram or
// two cannot pull in unrelated surnames.
const maxNameEditDistance = 3

// SearchByNameAndAddress blends name and address similarity: candidates
// come from whichever fields were supplied, each field contributes a
// score, and candidates rank by the average. Names score with
// Jaro-Winkler; the address scores with trigram similarity.
func (ss *SearchService) SearchByNameAndAddress(ctx context.Context, firstName, lastName, address string, limit int) ([]models.VoterMatch, error) {
	if limit <= 0 || limit > ss.cfg.ResultLimit {
		limit = ss.cfg.ResultLimit
	}

	first := normalizer.NormalizeName(firstName)
	last := normalizer.NormalizeName(lastName)
	addr := normalizer.Normalize(address)

	useFirst := len(first) >= 2
	useLast := len(last) >= 2
	useAddr := len(addr) >= ss.cfg.MinQueryLength
	if !useFirst && !useLast && !useAddr {
		return []models.VoterMatch{}, nil
	}

	// Candidate retrieval needs an indexed field; first name alone has
	// none and rides along as a scoring term only.
	if !useLast && !useAddr {
		return []models.VoterMatch{}, nil
	}

	candidates := make(map[string]models.Voter)
	if useAddr {
		hits, err := ss.searcher.SimilarityLookup(ctx, addr, limit)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		for _, h := range hits {
			candidates[h.Voter.ID.Hex()] = h.Voter
		}
	}
	if useLast {
		voters, err := ss.searcher.LastNameLookup(ctx, last, limit)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		for _, v := range voters {
			candidates[v.ID.Hex()] = v
		}
	}

	addrTrigrams := trigram.Extract(addr)
	ranked := make([]models.VoterMatch, 0, len(candidates))
	for _, v := range candidates {
		var scores []float64
		if useAddr {
			scores = append(scores, trigram.Similarity(addrTrigrams, v.AddressTrigrams))
		}
		if useLast {
			voterLast := normalizer.NormalizeName(v.LastName)
			if levenshtein.ComputeDistance(last, voterLast) > maxNameEditDistance && !useAddr {
				continue
			}
			scores = append(scores, smetrics.JaroWinkler(last, voterLast, 0.7, 4))
		}
		if useFirst {
			scores = append(scores, smetrics.JaroWinkler(first, normalizer.NormalizeName(v.FirstName), 0.7, 4))
		}

		var sum float64
		for _, s := range scores {
			sum += s
		}
		avg := sum / float64(len(scores))
		if avg < ss.cfg.SimilarityThreshold {
			continue
		}
		ranked = append(ranked, models.VoterMatch{
			Voter:           v,
			MatchTier:       models.TierSimilarity,
			SimilarityScore: avg,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SimilarityScore != ranked[j].SimilarityScore {
			return ranked[i].SimilarityScore > ranked[j].SimilarityScore
		}
		return strings.Compare(ranked[i].Voter.ID.Hex(), ranked[j].Voter.ID.Hex()) < 0
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
