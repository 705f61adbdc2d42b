package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration.
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateVectorDB()...)
	errs = append(errs, c.validateLLM()...)
	errs = append(errs, c.validateRetrieval()...)
	errs = append(errs, c.validateSplitter()...)
	errs = append(errs, c.validateIngest()...)
	errs = append(errs, c.validateSession()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	if c.Embedding.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	}
	if c.Embedding.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.model",
			Message: "embedding model is required",
		})
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
		})
	}
	if c.Embedding.Dimensions > 0 && (c.Embedding.Dimensions < 128 || c.Embedding.Dimensions > 4096) {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions %d is outside typical range [128, 4096]", c.Embedding.Dimensions),
		})
	}

	return errs
}

func (c *Config) validateVectorDB() ValidationErrors {
	var errs ValidationErrors

	if c.VectorDB.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: "vectordb provider is required",
		})
	}
	switch strings.ToLower(c.VectorDB.Provider) {
	case "milvus":
		if c.VectorDB.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.host",
				Message: "vectordb host is required for milvus provider",
			})
		}
		if c.VectorDB.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.collection",
				Message: "collection name is required for milvus provider",
			})
		}
	}

	return errs
}

func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors

	if c.LLM.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: "llm provider is required",
		})
	}
	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.model",
			Message: "llm model is required",
		})
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "llm.temperature",
			Message: fmt.Sprintf("llm.temperature must be in [0, 2], got %.2f", c.LLM.Temperature),
		})
	}

	return errs
}

func (c *Config) validateRetrieval() ValidationErrors {
	var errs ValidationErrors

	if c.Retrieval.TopK <= 0 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.top_k",
			Message: fmt.Sprintf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK),
		})
	}
	if c.Retrieval.TopK > 100 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.top_k",
			Message: fmt.Sprintf("retrieval.top_k %d is too large (max recommended: 100)", c.Retrieval.TopK),
		})
	}
	if c.Retrieval.Threshold < 0 || c.Retrieval.Threshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.threshold",
			Message: fmt.Sprintf("retrieval.threshold must be in [0, 1], got %.2f", c.Retrieval.Threshold),
		})
	}
	if c.Retrieval.MMRLambda < 0 || c.Retrieval.MMRLambda > 1 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.mmr_lambda",
			Message: fmt.Sprintf("retrieval.mmr_lambda must be in [0, 1], got %.2f", c.Retrieval.MMRLambda),
		})
	}
	if c.Retrieval.SuggestionThreshold < 0 || c.Retrieval.SuggestionThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "retrieval.suggestion_threshold",
			Message: fmt.Sprintf("retrieval.suggestion_threshold must be in [0, 1], got %.2f", c.Retrieval.SuggestionThreshold),
		})
	}

	return errs
}

func (c *Config) validateSplitter() ValidationErrors {
	var errs ValidationErrors

	switch c.Splitter.Provider {
	case "recursive", "character", "token":
	default:
		errs = append(errs, ValidationError{
			Field:   "splitter.provider",
			Message: fmt.Sprintf("unknown splitter provider %q (expected recursive, character or token)", c.Splitter.Provider),
		})
	}
	if c.Splitter.ChunkSize <= 0 {
		errs = append(errs, ValidationError{
			Field:   "splitter.chunk_size",
			Message: fmt.Sprintf("splitter.chunk_size must be positive, got %d", c.Splitter.ChunkSize),
		})
	}
	if c.Splitter.ChunkOverlap < 0 || c.Splitter.ChunkOverlap >= c.Splitter.ChunkSize {
		errs = append(errs, ValidationError{
			Field:   "splitter.chunk_overlap",
			Message: fmt.Sprintf("splitter.chunk_overlap must be in [0, chunk_size), got %d", c.Splitter.ChunkOverlap),
		})
	}

	return errs
}

func (c *Config) validateIngest() ValidationErrors {
	var errs ValidationErrors

	if c.Ingest.DeleteRetries < 1 {
		errs = append(errs, ValidationError{
			Field:   "ingest.delete_retries",
			Message: fmt.Sprintf("ingest.delete_retries must be at least 1, got %d", c.Ingest.DeleteRetries),
		})
	}
	if c.Ingest.MaxUploadBytes <= 0 {
		errs = append(errs, ValidationError{
			Field:   "ingest.max_upload_bytes",
			Message: fmt.Sprintf("ingest.max_upload_bytes must be positive, got %d", c.Ingest.MaxUploadBytes),
		})
	}
	for i, ext := range c.Ingest.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("ingest.allowed_extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with a dot", ext),
			})
		}
	}

	return errs
}

func (c *Config) validateSession() ValidationErrors {
	var errs ValidationErrors

	if c.Session == nil {
		return errs
	}
	switch c.Session.Store {
	case "", "inmemory":
	case "redis":
		if c.Session.RedisAddr == "" {
			errs = append(errs, ValidationError{
				Field:   "session.redis_addr",
				Message: "redis_addr is required when session.store is redis",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "session.store",
			Message: fmt.Sprintf("unknown session store %q (expected inmemory or redis)", c.Session.Store),
		})
	}

	return errs
}
