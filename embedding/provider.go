// Package embedding maps text to fixed-length vectors via an
// OpenAI-compatible API.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/studyhall/tutor-rag/config"
)

// Provider turns text into embedding vectors. Dimensionality must match
// the vector collection.
type Provider interface {
	// Embed embeds a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds texts in order, with bounded concurrency.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the configured vector width.
	Dimensions() int
}

// New builds the provider selected by the configuration. Dashscope and
// qwen endpoints speak the OpenAI wire protocol through their
// compatible-mode base URL.
func New(cfg config.EmbeddingConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "dashscope", "qwen":
		return newOpenAI(cfg)
	case "":
		return nil, fmt.Errorf("embedding provider is required")
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
