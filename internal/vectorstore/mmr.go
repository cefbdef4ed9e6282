package vectorstore

import "math"

// mmrLambda balances relevance against diversity in MMR selection.
// 0.5 weighs both equally.
const mmrLambda = 0.5

// maximalMarginalRelevance selects up to k candidate indices, greedily
// picking the candidate that maximizes
//
//	lambda*sim(query, candidate) - (1-lambda)*max(sim(candidate, selected))
//
// Candidates are assumed to be ordered by similarity already, so the
// first pick is always index 0.
func maximalMarginalRelevance(query []float32, candidates [][]float32, k int, lambda float32) []int {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	querySims := make([]float32, len(candidates))
	for i, c := range candidates {
		querySims[i] = cosineSimilarity(query, c)
	}

	selected := make([]int, 0, k)
	remaining := make(map[int]bool, len(candidates))
	for i := range candidates {
		remaining[i] = true
	}

	for len(selected) < k {
		best := -1
		bestScore := float32(math.Inf(-1))

		for i := range candidates {
			if !remaining[i] {
				continue
			}

			var maxSelectedSim float32
			for _, j := range selected {
				if sim := cosineSimilarity(candidates[i], candidates[j]); sim > maxSelectedSim {
					maxSelectedSim = sim
				}
			}

			score := lambda*querySims[i] - (1-lambda)*maxSelectedSim
			if score > bestScore {
				bestScore = score
				best = i
			}
		}

		if best < 0 {
			break
		}
		selected = append(selected, best)
		delete(remaining, best)
	}

	return selected
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched or zero-length vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
