package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if c.LLM.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "Ollama base URL is required",
		})
	} else if _, err := url.Parse(c.LLM.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.LLM.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.LLM.EmbedModel == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.embed_model",
			Message: "embedding model is required",
		})
	}

	// Validate Index config
	if c.Index.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "index.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "index.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if c.Index.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "index.batch_size",
			Message: "batch_size must be positive",
		})
	}

	if c.Index.MinTextLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "index.min_text_length",
			Message: "min_text_length must be positive",
		})
	}

	if c.Index.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "index.dir",
			Message: "index directory is required",
		})
	}

	// Validate Data config
	if c.Data.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "data.dir",
			Message: "data directory is required",
		})
	}

	return errors
}
