package vectordb

import (
	"math"

	"github.com/studyhall/tutor-rag/schema"
)

// MMR selects topK results from a wider candidate pool by maximal
// marginal relevance: each step picks the candidate maximizing
// lambda*relevance - (1-lambda)*max-similarity-to-selected. Lambda 1.0
// is pure relevance, 0.0 pure diversity. Candidates without vectors are
// ranked by relevance alone.
func MMR(query []float32, pool []schema.SearchResult, topK int, lambda float64) []schema.SearchResult {
	if topK <= 0 || len(pool) == 0 {
		return nil
	}
	if topK >= len(pool) {
		out := make([]schema.SearchResult, len(pool))
		copy(out, pool)
		return out
	}
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}

	relevance := make([]float64, len(pool))
	for i := range pool {
		if len(pool[i].Document.Vector) > 0 && len(query) > 0 {
			relevance[i] = CosineSimilarity(query, pool[i].Document.Vector)
		} else {
			relevance[i] = pool[i].Score
		}
	}

	selected := make([]int, 0, topK)
	used := make([]bool, len(pool))

	for len(selected) < topK {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for i := range pool {
			if used[i] {
				continue
			}
			redundancy := 0.0
			for _, s := range selected {
				sim := similarityBetween(&pool[i], &pool[s])
				if sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		used[bestIdx] = true
		selected = append(selected, bestIdx)
	}

	out := make([]schema.SearchResult, 0, len(selected))
	for _, i := range selected {
		out = append(out, pool[i])
	}
	return out
}

func similarityBetween(a, b *schema.SearchResult) float64 {
	if len(a.Document.Vector) == 0 || len(b.Document.Vector) == 0 {
		return 0
	}
	return CosineSimilarity(a.Document.Vector, b.Document.Vector)
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-length vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
