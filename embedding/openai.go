package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/studyhall/tutor-rag/config"
)

// apiBatchSize bounds how many inputs go into one embeddings request.
const apiBatchSize = 16

type openAIProvider struct {
	client      openai.Client
	model       string
	dimensions  int
	concurrency int
	timeout     time.Duration
	// explicit openai endpoints accept the dimensions parameter;
	// compatible servers usually reject it.
	sendDimensions bool
}

func newOpenAI(cfg config.EmbeddingConfig) (*openAIProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	concurrency := cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &openAIProvider{
		client:         openai.NewClient(opts...),
		model:          cfg.Model,
		dimensions:     cfg.Dimensions,
		concurrency:    concurrency,
		timeout:        time.Duration(cfg.TimeoutMs) * time.Millisecond,
		sendDimensions: cfg.Provider == "openai",
	}, nil
}

func (p *openAIProvider) Dimensions() int { return p.dimensions }

func (p *openAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.embedSlice(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch splits texts into API-sized batches and embeds them with
// bounded concurrency, preserving input order.
func (p *openAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
	)
	sem := make(chan struct{}, p.concurrency)

	for start := 0; start < len(texts); start += apiBatchSize {
		end := start + apiBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(start, end int) {
			defer wg.Done()
			defer func() { <-sem }()

			vecs, err := p.embedSlice(ctx, texts[start:end])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if first == nil {
					first = err
				}
				return
			}
			copy(out[start:end], vecs)
		}(start, end)
	}
	wg.Wait()

	if first != nil {
		return nil, first
	}
	return out, nil
}

func (p *openAIProvider) embedSlice(ctx context.Context, texts []string) ([][]float32, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(p.model),
	}
	if p.sendDimensions && p.dimensions > 0 {
		params.Dimensions = openai.Int(int64(p.dimensions))
	}
	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed, err: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response size mismatch: want %d, got %d", len(texts), len(resp.Data))
	}
	vecs := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			vec[j] = float32(f)
		}
		vecs[i] = vec
	}
	return vecs, nil
}
