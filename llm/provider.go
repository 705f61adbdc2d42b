// Package llm calls the text-generation collaborator.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/studyhall/tutor-rag/config"
)

// Provider generates text from a system instruction and a user message.
type Provider interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// New builds the provider selected by the configuration.
func New(cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "dashscope", "qwen":
		return newOpenAI(cfg)
	case "":
		return nil, fmt.Errorf("llm provider is required")
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
