package trigram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "Single short word",
			input: "st",
			want:  []string{"  s", " st", "st "},
		},
		{
			name:  "Empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "Whitespace only",
			input: "   ",
			want:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(tc.input))
		})
	}
}

func TestExtractDeduplicates(t *testing.T) {
	// Repeated words must not inflate the set.
	once := Extract("main")
	twice := Extract("main main")
	assert.Equal(t, once, twice)
}

func TestSimilarity(t *testing.T) {
	a := Extract("123 main st")

	assert.Equal(t, 1.0, Similarity(a, Extract("123 main st")))
	assert.Equal(t, 0.0, Similarity(a, nil))
	assert.Equal(t, 0.0, Similarity(nil, a))

	// Symmetry.
	b := Extract("123 main street")
	assert.Equal(t, Similarity(a, b), Similarity(b, a))

	// A longer variant of the same street shares most trigrams.
	assert.Greater(t, Similarity(a, b), 0.5)
}

func TestSimilarityThresholdExamples(t *testing.T) {
	// The misspelled "125 Mian St" must clear the default 0.2 threshold
	// against "123 main" so the fuzzy path can surface it, while an
	// unrelated street stays below it.
	query := Extract("123 main")

	mian := StringSimilarity("123 main", "125 mian st")
	assert.Greater(t, mian, 0.2, "misspelled street should pass the default threshold")

	unrelated := StringSimilarity("123 main", "88 chestnut blvd")
	assert.Less(t, unrelated, 0.2)

	// Prefix variants score higher than the misspelling.
	assert.Greater(t, Similarity(query, Extract("123 main st")), mian)
}
