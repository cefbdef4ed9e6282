package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)

	// Degenerate inputs.
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, cosineSimilarity(nil, nil))
}

func TestMaximalMarginalRelevancePrefersDiversity(t *testing.T) {
	// The query must be distinct from the top candidate: when they are
	// identical, every second-round score ties at zero and the greedy
	// loop keeps the duplicate.
	query := []float32{0.9, 0.4, 0}
	candidates := [][]float32{
		{1, 0.2, 0},   // most relevant
		{1, 0.2, 0},   // exact duplicate of candidate 0
		{0.5, 0.8, 0}, // relevant but different direction
	}

	selected := maximalMarginalRelevance(query, candidates, 2, 0.5)
	require.Len(t, selected, 2)

	// First pick is the most relevant; second pick skips the
	// near-duplicate in favor of the diverse candidate.
	assert.Equal(t, 0, selected[0])
	assert.Equal(t, 2, selected[1])
}

func TestMaximalMarginalRelevanceBounds(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{1, 0}, {0, 1}}

	assert.Nil(t, maximalMarginalRelevance(query, nil, 3, 0.5))
	assert.Nil(t, maximalMarginalRelevance(query, candidates, 0, 0.5))

	// k larger than candidate count returns everything.
	selected := maximalMarginalRelevance(query, candidates, 10, 0.5)
	assert.Len(t, selected, 2)
}
