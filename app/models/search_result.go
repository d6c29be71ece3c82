package models

// MatchTier orders result candidates by how they were retrieved. Prefix
// hits rank above similarity-only hits regardless of score.
type MatchTier int

const (
	// TierPrefix marks records whose normalized address starts with the
	// normalized query.
	TierPrefix MatchTier = 1
	// TierSimilarity marks records retrieved only by trigram similarity.
	TierSimilarity MatchTier = 2
)

// VoterMatch is one ranked search candidate.
type VoterMatch struct {
	Voter           Voter     `json:"voter"`
	MatchTier       MatchTier `json:"match_tier"`
	SimilarityScore float64   `json:"similarity_score"`
}
