// Package retrieve runs multi-variant vector search and merges the
// results into one deduplicated context.
package retrieve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/studyhall/tutor-rag/common/logger"
	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/embedding"
	"github.com/studyhall/tutor-rag/metrics"
	"github.com/studyhall/tutor-rag/schema"
	"github.com/studyhall/tutor-rag/vectordb"
)

// Retriever searches every query variant concurrently and merges the
// hits. A failing variant costs only its own results.
type Retriever struct {
	cfg      config.RetrievalConfig
	embedder embedding.Provider
	store    vectordb.Provider
}

// New wires the retrieval pipeline.
func New(cfg config.RetrievalConfig, embedder embedding.Provider, store vectordb.Provider) *Retriever {
	return &Retriever{cfg: cfg, embedder: embedder, store: store}
}

type variantResult struct {
	items []schema.SearchResult
	err   error
}

// Retrieve searches all variants and returns their merged context.
// Results keep variant order, and within a variant relevance order;
// near-identical hits surfaced by several variants appear once, at
// their first position. An error is returned only when every variant
// failed.
func (r *Retriever) Retrieve(ctx context.Context, variants []schema.QueryVariant) (schema.MergedContext, error) {
	merged := schema.MergedContext{}
	if len(variants) == 0 {
		return merged, nil
	}

	results := make([]variantResult, len(variants))
	var wg sync.WaitGroup
	for i := range variants {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items, err := r.searchVariant(ctx, variants[i])
			results[i] = variantResult{items: items, err: err}
		}(i)
	}
	wg.Wait()

	failures := 0
	var lastErr error
	seen := map[string]struct{}{}
	for i, res := range results {
		if res.err != nil {
			failures++
			lastErr = res.err
			logger.Warnf("variant %s search failed, err: %v", variants[i].Label, res.err)
			continue
		}
		for _, item := range res.items {
			key := item.DedupKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged.Items = append(merged.Items, item)
		}
	}
	if failures == len(variants) {
		return merged, fmt.Errorf("all %d query variants failed, last err: %w", failures, lastErr)
	}

	metrics.ObserveMerge(len(merged.Items))
	return merged, nil
}

// searchVariant embeds one variant, pulls a widened candidate pool and
// re-ranks it for diversity down to the variant's budget.
func (r *Retriever) searchVariant(ctx context.Context, v schema.QueryVariant) ([]schema.SearchResult, error) {
	start := time.Now()
	if r.cfg.VariantTimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.VariantTimeoutMs)*time.Millisecond)
		defer cancel()
	}

	vec, err := r.embedder.Embed(ctx, v.Text)
	if err != nil {
		return nil, fmt.Errorf("embed variant failed, err: %w", err)
	}

	topK := r.budget(v.Label)
	fetchK := topK * r.cfg.FetchMultiplier
	if r.cfg.FetchCap > 0 && fetchK > r.cfg.FetchCap {
		fetchK = r.cfg.FetchCap
	}
	if fetchK < topK {
		fetchK = topK
	}

	pool, err := r.store.Search(ctx, vec, fetchK)
	if err != nil {
		return nil, err
	}
	if r.cfg.Threshold > 0 {
		kept := make([]schema.SearchResult, 0, len(pool))
		for _, item := range pool {
			if item.Score >= r.cfg.Threshold {
				kept = append(kept, item)
			}
		}
		pool = kept
	}

	items := vectordb.MMR(vec, pool, topK, r.cfg.MMRLambda)
	metrics.ObserveVariantSearch(v.Label, start, len(items))
	return items, nil
}

// budget widens the original question's slice relative to its
// expansions.
func (r *Retriever) budget(label string) int {
	if label == schema.VariantOriginal && r.cfg.OriginalTopK > 0 {
		return r.cfg.OriginalTopK
	}
	return r.cfg.TopK
}
