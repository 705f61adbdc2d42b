package retrieve

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/schema"
	"github.com/studyhall/tutor-rag/vectordb"
)

// fakeBackend plays both the embedder and the vector store: Embed maps
// each distinct text to a recognizable vector, Search answers with the
// results registered for that text.
type fakeBackend struct {
	mu      sync.Mutex
	texts   []string
	results map[string][]schema.SearchResult
	errs    map[string]error
	fetchK  map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		results: map[string][]schema.SearchResult{},
		errs:    map[string]error{},
		fetchK:  map[string]int{},
	}
}

func (f *fakeBackend) Dimensions() int { return 1 }

func (f *fakeBackend) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.texts {
		if t == text {
			return []float32{float32(i + 1)}, nil
		}
	}
	f.texts = append(f.texts, text)
	return []float32{float32(len(f.texts))}, nil
}

func (f *fakeBackend) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeBackend) EnsureCollection(context.Context) error              { return nil }
func (f *fakeBackend) Upsert(context.Context, []schema.Document) error    { return nil }
func (f *fakeBackend) DeleteByIDs(context.Context, []string) error        { return nil }
func (f *fakeBackend) ListSourceIDs(context.Context, string) ([]string, error) {
	return nil, nil
}
func (f *fakeBackend) Stats(context.Context) (vectordb.CollectionStats, error) {
	return vectordb.CollectionStats{}, nil
}
func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) Search(_ context.Context, vec []float32, topK int) ([]schema.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := int(vec[0]) - 1
	if idx < 0 || idx >= len(f.texts) {
		return nil, fmt.Errorf("unknown query vector")
	}
	text := f.texts[idx]
	f.fetchK[text] = topK
	if err := f.errs[text]; err != nil {
		return nil, err
	}
	return f.results[text], nil
}

func hit(source string, page int, text string, score float64) schema.SearchResult {
	return schema.SearchResult{
		Document: schema.Document{
			ID:   fmt.Sprintf("%s-%d", source, page),
			Text: text,
			Metadata: map[string]any{
				schema.MetaSource: source,
				schema.MetaPage:   page,
			},
		},
		Score: score,
	}
}

func testConfig() config.RetrievalConfig {
	return config.RetrievalConfig{
		TopK:             5,
		OriginalTopK:     8,
		MMRLambda:        0.5,
		FetchMultiplier:  4,
		FetchCap:         50,
		VariantTimeoutMs: 1000,
	}
}

func TestRetrieveMergesAndDedupsAcrossVariants(t *testing.T) {
	backend := newFakeBackend()
	backend.results["вопрос"] = []schema.SearchResult{
		hit("a.pdf", 1, "белки строят мышцы", 0.9),
		hit("a.pdf", 2, "жиры дают энергию", 0.8),
	}
	backend.results["расширенный вопрос"] = []schema.SearchResult{
		hit("a.pdf", 2, "жиры дают энергию", 0.85), // same chunk again
		hit("b.pdf", 3, "углеводы и клетчатка", 0.7),
	}

	r := New(testConfig(), backend, backend)
	merged, err := r.Retrieve(context.Background(), []schema.QueryVariant{
		{Label: schema.VariantOriginal, Text: "вопрос"},
		{Label: schema.VariantExpanded, Text: "расширенный вопрос"},
	})
	require.NoError(t, err)

	require.Len(t, merged.Items, 3)
	assert.Equal(t, "белки строят мышцы", merged.Items[0].Document.Text)
	assert.Equal(t, "жиры дают энергию", merged.Items[1].Document.Text)
	assert.Equal(t, "углеводы и клетчатка", merged.Items[2].Document.Text)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, merged.Sources())
}

func TestRetrieveIsolatesVariantFailures(t *testing.T) {
	backend := newFakeBackend()
	backend.results["вопрос"] = []schema.SearchResult{hit("a.pdf", 1, "текст", 0.9)}
	backend.errs["сломанный"] = fmt.Errorf("timeout")

	r := New(testConfig(), backend, backend)
	merged, err := r.Retrieve(context.Background(), []schema.QueryVariant{
		{Label: schema.VariantOriginal, Text: "вопрос"},
		{Label: schema.VariantExpanded, Text: "сломанный"},
	})
	require.NoError(t, err)
	assert.Len(t, merged.Items, 1)
}

func TestRetrieveFailsWhenAllVariantsFail(t *testing.T) {
	backend := newFakeBackend()
	backend.errs["один"] = fmt.Errorf("down")
	backend.errs["два"] = fmt.Errorf("down")

	r := New(testConfig(), backend, backend)
	_, err := r.Retrieve(context.Background(), []schema.QueryVariant{
		{Label: schema.VariantOriginal, Text: "один"},
		{Label: schema.VariantExpanded, Text: "два"},
	})
	assert.Error(t, err)
}

func TestRetrieveEmptyResultsYieldEmptyContext(t *testing.T) {
	backend := newFakeBackend()
	backend.results["вопрос"] = nil

	r := New(testConfig(), backend, backend)
	merged, err := r.Retrieve(context.Background(), []schema.QueryVariant{
		{Label: schema.VariantOriginal, Text: "вопрос"},
	})
	require.NoError(t, err)
	assert.Empty(t, merged.Items)
}

func TestRetrieveAppliesScoreThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.Threshold = 0.5
	backend := newFakeBackend()
	backend.results["вопрос"] = []schema.SearchResult{
		hit("a.pdf", 1, "релевантный текст", 0.9),
		hit("a.pdf", 2, "слабое совпадение", 0.3),
	}

	r := New(cfg, backend, backend)
	merged, err := r.Retrieve(context.Background(), []schema.QueryVariant{
		{Label: schema.VariantOriginal, Text: "вопрос"},
	})
	require.NoError(t, err)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, "релевантный текст", merged.Items[0].Document.Text)
}

func TestRetrieveBudgetsPerVariant(t *testing.T) {
	backend := newFakeBackend()
	r := New(testConfig(), backend, backend)

	_, err := r.Retrieve(context.Background(), []schema.QueryVariant{
		{Label: schema.VariantOriginal, Text: "оригинал"},
		{Label: schema.VariantKeywordsOnly, Text: "ключевые слова"},
	})
	require.NoError(t, err)

	// fetchK = budget * multiplier, capped
	assert.Equal(t, 32, backend.fetchK["оригинал"])
	assert.Equal(t, 20, backend.fetchK["ключевые слова"])
}

func TestRetrieveNoVariants(t *testing.T) {
	backend := newFakeBackend()
	r := New(testConfig(), backend, backend)
	merged, err := r.Retrieve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, merged.Items)
}
