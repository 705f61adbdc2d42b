package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.ApplyDefaults()
	c.Embedding.Provider = "openai"
	c.Embedding.Model = "text-embedding-3-small"
	c.LLM.Provider = "openai"
	c.LLM.Model = "gpt-4o-mini"
	c.VectorDB.Provider = "milvus"
	c.VectorDB.Host = "localhost"
	c.VectorDB.Port = 19530
	c.VectorDB.Collection = "tutor_chunks"
	return c
}

func TestApplyDefaults(t *testing.T) {
	c := &Config{}
	c.ApplyDefaults()

	assert.Equal(t, 5, c.Retrieval.TopK)
	assert.Equal(t, 8, c.Retrieval.OriginalTopK)
	assert.InDelta(t, 0.5, c.Retrieval.MMRLambda, 1e-9)
	assert.Equal(t, 4, c.Retrieval.FetchMultiplier)
	assert.Equal(t, 50, c.Retrieval.FetchCap)
	assert.InDelta(t, 0.8, c.Retrieval.SuggestionThreshold, 1e-9)

	assert.Equal(t, "recursive", c.Splitter.Provider)
	assert.Equal(t, 500, c.Splitter.ChunkSize)
	assert.Equal(t, 50, c.Splitter.ChunkOverlap)

	assert.Equal(t, []string{".pdf"}, c.Ingest.AllowedExtensions)
	assert.Equal(t, int64(10<<20), c.Ingest.MaxUploadBytes)
	assert.Equal(t, 3, c.Ingest.DeleteRetries)
	assert.Equal(t, 50, c.Ingest.MinChunkLength)

	assert.Equal(t, 384, c.Embedding.Dimensions)
	assert.Equal(t, 2, c.Intent.KeywordWeight)
	assert.Equal(t, 3, c.Intent.PatternWeight)
	assert.Equal(t, 10, c.Intent.ScoreDivisor)
	assert.Equal(t, "info", c.Log.Level)
}

func TestValidateAccepts(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	c := &Config{}
	c.ApplyDefaults()
	// missing embedding provider/model, llm provider/model, vectordb provider

	err := c.Validate()
	require.Error(t, err)
	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(errs), 5)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"milvus needs host", func(c *Config) { c.VectorDB.Host = "" }, "vectordb.host"},
		{"milvus needs collection", func(c *Config) { c.VectorDB.Collection = "" }, "vectordb.collection"},
		{"temperature range", func(c *Config) { c.LLM.Temperature = 3 }, "llm.temperature"},
		{"topk too large", func(c *Config) { c.Retrieval.TopK = 500 }, "retrieval.top_k"},
		{"lambda range", func(c *Config) { c.Retrieval.MMRLambda = 1.5 }, "retrieval.mmr_lambda"},
		{"overlap below size", func(c *Config) { c.Splitter.ChunkOverlap = 500 }, "splitter.chunk_overlap"},
		{"splitter provider", func(c *Config) { c.Splitter.Provider = "semantic" }, "splitter.provider"},
		{"extension dot", func(c *Config) { c.Ingest.AllowedExtensions = []string{"pdf"} }, "ingest.allowed_extensions[0]"},
		{"session store", func(c *Config) { c.Session = &SessionConfig{Store: "etcd"} }, "session.store"},
		{"redis addr", func(c *Config) { c.Session = &SessionConfig{Store: "redis"} }, "session.redis_addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			errs := err.(ValidationErrors)
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected error on field %s, got %v", tt.field, errs)
		})
	}
}

const sampleYAML = `
retrieval:
  top_k: 6
  threshold: 0.4
llm:
  provider: openai
  model: gpt-4o-mini
embedding:
  provider: openai
  model: text-embedding-3-small
  dimensions: 384
vectordb:
  provider: milvus
  host: milvus.local
  port: 19530
  collection: tutor_chunks
session:
  store: inmemory
cache:
  enabled: true
`

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	t.Setenv("TUTOR_LLM_API_KEY", "sk-test")
	t.Setenv("TUTOR_EMBEDDING_API_KEY", "sk-embed")

	cfg, err := Load(path)
	require.NoError(t, err)

	// explicit values survive
	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.4, cfg.Retrieval.Threshold, 1e-9)
	assert.Equal(t, "milvus.local", cfg.VectorDB.Host)

	// defaults fill the gaps
	assert.Equal(t, 8, cfg.Retrieval.OriginalTopK)
	assert.Equal(t, "recursive", cfg.Splitter.Provider)
	require.NotNil(t, cfg.Session)
	assert.Equal(t, 86400, cfg.Session.TTLSeconds)
	require.NotNil(t, cfg.Cache)
	assert.Equal(t, 512, cfg.Cache.Capacity)

	// secrets come from the environment
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "sk-embed", cfg.Embedding.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: openai\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
