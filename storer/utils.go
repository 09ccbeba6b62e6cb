package storer

import (
	"math"
	"sort"
)

// CosineSimilarity returns 1 - cosine distance. Empty, zero-norm or
// mismatched vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SelectAbove keeps the candidates scoring strictly above threshold, orders
// them best-first and truncates to limit. The sort is stable, so candidates
// with equal similarity keep their incoming (storage) order.
func SelectAbove(candidates []ScoredSegment, threshold float64, limit int) []ScoredSegment {
	if limit < 1 {
		return []ScoredSegment{}
	}

	selected := make([]ScoredSegment, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Similarity > threshold {
			selected = append(selected, cand)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Similarity > selected[j].Similarity
	})

	if len(selected) > limit {
		selected = selected[:limit]
	}

	return selected
}
