package vectordb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyhall/tutor-rag/schema"
)

func result(id string, vec []float32, score float64) schema.SearchResult {
	return schema.SearchResult{
		Document: schema.Document{ID: id, Vector: vec},
		Score:    score,
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func TestMMRPrefersDiverseResults(t *testing.T) {
	query := []float32{1, 0}
	pool := []schema.SearchResult{
		result("a", []float32{1, 0}, 1.0),
		result("a2", []float32{0.999, 0.001}, 0.99),
		result("b", []float32{0.7, 0.7}, 0.7),
	}

	picked := MMR(query, pool, 2, 0.5)

	assert.Len(t, picked, 2)
	assert.Equal(t, "a", picked[0].Document.ID)
	// a2 nearly duplicates a; balanced lambda should pick b instead.
	assert.Equal(t, "b", picked[1].Document.ID)
}

func TestMMRPureRelevance(t *testing.T) {
	query := []float32{1, 0}
	pool := []schema.SearchResult{
		result("a", []float32{1, 0}, 1.0),
		result("a2", []float32{0.999, 0.001}, 0.99),
		result("b", []float32{0.7, 0.7}, 0.7),
	}

	picked := MMR(query, pool, 2, 1.0)

	assert.Len(t, picked, 2)
	assert.Equal(t, "a", picked[0].Document.ID)
	assert.Equal(t, "a2", picked[1].Document.ID)
}

func TestMMRTopKCoversPool(t *testing.T) {
	pool := []schema.SearchResult{
		result("a", []float32{1, 0}, 1.0),
		result("b", []float32{0, 1}, 0.5),
	}
	assert.Len(t, MMR([]float32{1, 0}, pool, 10, 0.5), 2)
	assert.Nil(t, MMR([]float32{1, 0}, pool, 0, 0.5))
	assert.Nil(t, MMR([]float32{1, 0}, nil, 3, 0.5))
}

func TestMMRWithoutVectorsFallsBackToScore(t *testing.T) {
	pool := []schema.SearchResult{
		result("low", nil, 0.2),
		result("high", nil, 0.9),
		result("mid", nil, 0.5),
	}

	picked := MMR(nil, pool, 2, 0.5)

	assert.Len(t, picked, 2)
	assert.Equal(t, "high", picked[0].Document.ID)
	assert.Equal(t, "mid", picked[1].Document.ID)
}
