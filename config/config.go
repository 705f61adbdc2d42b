package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of the tutoring service.
type Config struct {
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig  `json:"vectordb" yaml:"vectordb"`
	Splitter  SplitterConfig  `json:"splitter" yaml:"splitter"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Intent    IntentConfig    `json:"intent" yaml:"intent"`
	Session   *SessionConfig  `json:"session,omitempty" yaml:"session,omitempty"`
	Cache     *CacheConfig    `json:"cache,omitempty" yaml:"cache,omitempty"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// RetrievalConfig controls the multi-variant retrieval pipeline.
type RetrievalConfig struct {
	// TopK is the per-variant result budget for expansion variants.
	TopK int `json:"top_k" yaml:"top_k"`
	// OriginalTopK is the budget for the original-question variant,
	// which gets a wider slice than its expansions.
	OriginalTopK int `json:"original_top_k" yaml:"original_top_k"`
	// Threshold drops hits scored below it. 0 disables.
	Threshold float64 `json:"threshold" yaml:"threshold"`
	// MMRLambda trades relevance (1.0) against diversity (0.0).
	MMRLambda float64 `json:"mmr_lambda" yaml:"mmr_lambda"`
	// FetchMultiplier widens the candidate pool for MMR selection:
	// fetchK = FetchMultiplier * topK, capped at FetchCap.
	FetchMultiplier int `json:"fetch_multiplier" yaml:"fetch_multiplier"`
	FetchCap        int `json:"fetch_cap" yaml:"fetch_cap"`
	// VariantTimeoutMs bounds each per-variant search call.
	VariantTimeoutMs int `json:"variant_timeout_ms" yaml:"variant_timeout_ms"`
	// SuggestionThreshold: below this confidence, Ask appends suggested
	// follow-up questions to the outcome.
	SuggestionThreshold float64 `json:"suggestion_threshold" yaml:"suggestion_threshold"`
}

// LLMConfig configures the generation collaborator.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"`
	APIKey      string  `json:"api_key" yaml:"api_key"`
	BaseURL     string  `json:"base_url" yaml:"base_url"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	TimeoutMs   int     `json:"timeout_ms" yaml:"timeout_ms"`
}

// EmbeddingConfig configures the embedding collaborator. Dimensions must
// match the vector collection.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"`
	APIKey     string `json:"api_key" yaml:"api_key"`
	BaseURL    string `json:"base_url" yaml:"base_url"`
	Model      string `json:"model" yaml:"model"`
	Dimensions int    `json:"dimensions" yaml:"dimensions"`
	// BatchConcurrency bounds parallel embedding calls during ingestion.
	BatchConcurrency int `json:"batch_concurrency" yaml:"batch_concurrency"`
	TimeoutMs        int `json:"timeout_ms" yaml:"timeout_ms"`
}

// VectorDBConfig configures the vector store.
type VectorDBConfig struct {
	Provider   string `json:"provider" yaml:"provider"`
	Host       string `json:"host" yaml:"host"`
	Port       int    `json:"port" yaml:"port"`
	Database   string `json:"database" yaml:"database"`
	Collection string `json:"collection" yaml:"collection"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
	TimeoutMs  int    `json:"timeout_ms" yaml:"timeout_ms"`
}

// SplitterConfig selects and sizes the text splitter.
// Provider is one of: recursive, character, token.
type SplitterConfig struct {
	Provider     string `json:"provider" yaml:"provider"`
	ChunkSize    int    `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap" yaml:"chunk_overlap"`
	// TokenEncoding names the tiktoken encoding for the token provider.
	TokenEncoding string `json:"token_encoding,omitempty" yaml:"token_encoding,omitempty"`
}

// IngestConfig controls the ingestion state machine.
type IngestConfig struct {
	// AllowedExtensions whitelists upload file types.
	AllowedExtensions []string `json:"allowed_extensions" yaml:"allowed_extensions"`
	// MaxUploadBytes rejects oversized uploads before any processing.
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	// DeleteRetries bounds purge attempts before the replace is fatal.
	DeleteRetries int `json:"delete_retries" yaml:"delete_retries"`
	// DeleteBackoffMs is the fixed delay between purge attempts.
	DeleteBackoffMs int `json:"delete_backoff_ms" yaml:"delete_backoff_ms"`
	// MinChunkLength re-checks chunk length after splitting; short tail
	// chunks are dropped.
	MinChunkLength int `json:"min_chunk_length" yaml:"min_chunk_length"`
	// RegistryPath is the sqlite file holding document fingerprints.
	// Empty selects the in-memory registry.
	RegistryPath string `json:"registry_path" yaml:"registry_path"`
}

// IntentConfig exposes the classifier's scoring weights.
type IntentConfig struct {
	KeywordWeight int `json:"keyword_weight" yaml:"keyword_weight"`
	PatternWeight int `json:"pattern_weight" yaml:"pattern_weight"`
	ScoreDivisor  int `json:"score_divisor" yaml:"score_divisor"`
}

// SessionConfig selects the chat session store.
// Store is "inmemory" (default) or "redis".
type SessionConfig struct {
	Store       string `json:"store" yaml:"store"`
	TTLSeconds  int    `json:"ttl_seconds" yaml:"ttl_seconds"`
	MaxSessions int    `json:"max_sessions" yaml:"max_sessions"`
	RedisAddr   string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisDB     int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	RedisPass   string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
}

// CacheConfig controls the answer cache.
type CacheConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	Capacity   int  `json:"capacity" yaml:"capacity"`
	TTLSeconds int  `json:"ttl_seconds" yaml:"ttl_seconds"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// Load reads a YAML config file, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config failed, err: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config failed, err: %w", err)
	}
	cfg.ApplyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv resolves secrets from the environment so keys stay out of
// config files.
func (c *Config) applyEnv() {
	if v := os.Getenv("TUTOR_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("TUTOR_EMBEDDING_API_KEY"); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv("TUTOR_REDIS_PASSWORD"); v != "" && c.Session != nil {
		c.Session.RedisPass = v
	}
}

// ApplyDefaults fills unset fields with production defaults.
func (c *Config) ApplyDefaults() {
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.OriginalTopK == 0 {
		c.Retrieval.OriginalTopK = 8
	}
	if c.Retrieval.MMRLambda == 0 {
		c.Retrieval.MMRLambda = 0.5
	}
	if c.Retrieval.FetchMultiplier == 0 {
		c.Retrieval.FetchMultiplier = 4
	}
	if c.Retrieval.FetchCap == 0 {
		c.Retrieval.FetchCap = 50
	}
	if c.Retrieval.VariantTimeoutMs == 0 {
		c.Retrieval.VariantTimeoutMs = 5000
	}
	if c.Retrieval.SuggestionThreshold == 0 {
		c.Retrieval.SuggestionThreshold = 0.8
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.TimeoutMs == 0 {
		c.LLM.TimeoutMs = 30000
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.BatchConcurrency == 0 {
		c.Embedding.BatchConcurrency = 4
	}
	if c.Embedding.TimeoutMs == 0 {
		c.Embedding.TimeoutMs = 15000
	}
	if c.VectorDB.TimeoutMs == 0 {
		c.VectorDB.TimeoutMs = 10000
	}
	if c.Splitter.Provider == "" {
		c.Splitter.Provider = "recursive"
	}
	if c.Splitter.ChunkSize == 0 {
		c.Splitter.ChunkSize = 500
	}
	if c.Splitter.ChunkOverlap == 0 {
		c.Splitter.ChunkOverlap = 50
	}
	if c.Splitter.TokenEncoding == "" {
		c.Splitter.TokenEncoding = "cl100k_base"
	}
	if len(c.Ingest.AllowedExtensions) == 0 {
		c.Ingest.AllowedExtensions = []string{".pdf"}
	}
	if c.Ingest.MaxUploadBytes == 0 {
		c.Ingest.MaxUploadBytes = 10 << 20
	}
	if c.Ingest.DeleteRetries == 0 {
		c.Ingest.DeleteRetries = 3
	}
	if c.Ingest.DeleteBackoffMs == 0 {
		c.Ingest.DeleteBackoffMs = 500
	}
	if c.Ingest.MinChunkLength == 0 {
		c.Ingest.MinChunkLength = 50
	}
	if c.Intent.KeywordWeight == 0 {
		c.Intent.KeywordWeight = 2
	}
	if c.Intent.PatternWeight == 0 {
		c.Intent.PatternWeight = 3
	}
	if c.Intent.ScoreDivisor == 0 {
		c.Intent.ScoreDivisor = 10
	}
	if c.Session != nil {
		if c.Session.Store == "" {
			c.Session.Store = "inmemory"
		}
		if c.Session.TTLSeconds == 0 {
			c.Session.TTLSeconds = 86400
		}
		if c.Session.MaxSessions == 0 {
			c.Session.MaxSessions = 1000
		}
	}
	if c.Cache != nil {
		if c.Cache.Capacity == 0 {
			c.Cache.Capacity = 512
		}
		if c.Cache.TTLSeconds == 0 {
			c.Cache.TTLSeconds = 300
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
