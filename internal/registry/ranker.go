package registry

import (
	"sort"

	"github.com/petition-qc/app/models"
)

// MergeRank unions the two lookup results into one ranked candidate list:
// dedupe by voter id, prefix hits above similarity-only hits, score
// descending within a tier, voter id ascending on score ties, truncated
// to limit. The order is a deterministic total order for a fixed registry.
func MergeRank(prefix []models.Voter, similar []SimilarityHit, limit int) []models.VoterMatch {
	if limit <= 0 {
		return nil
	}

	merged := make([]models.VoterMatch, 0, len(prefix)+len(similar))
	seen := make(map[string]int, len(prefix))

	for _, v := range prefix {
		seen[v.ID.Hex()] = len(merged)
		merged = append(merged, models.VoterMatch{
			Voter:     v,
			MatchTier: models.TierPrefix,
			// Prefix hits carry no computed score; they rank as exact
			// intent unless the fuzzy path scored the same record below.
			SimilarityScore: 1.0,
		})
	}

	for _, hit := range similar {
		if i, ok := seen[hit.Voter.ID.Hex()]; ok {
			// Found by both paths: keep the prefix tier, surface the
			// real score.
			merged[i].SimilarityScore = hit.Score
			continue
		}
		merged = append(merged, models.VoterMatch{
			Voter:           hit.Voter,
			MatchTier:       models.TierSimilarity,
			SimilarityScore: hit.Score,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.MatchTier != b.MatchTier {
			return a.MatchTier < b.MatchTier
		}
		if a.SimilarityScore != b.SimilarityScore {
			return a.SimilarityScore > b.SimilarityScore
		}
		return a.Voter.ID.Hex() < b.Voter.ID.Hex()
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func sortHits(hits []SimilarityHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Voter.ID.Hex() < hits[j].Voter.ID.Hex()
	})
}
