package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  base_url: "http://localhost:11434"
  model: "llama3"
  embed_model: "nomic-embed-text"
  max_tokens: 1000
  temperature: 0.5

index:
  dir: "test-indexes"
  chunk_size: 500
  chunk_overlap: 100
  batch_size: 25
  min_text_length: 50

data:
  dir: "test-data"

server:
  addr: ":8080"
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	// Test loading config
	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	// Verify loaded values
	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, "llama3", config.LLM.Model)
	assert.Equal(t, "nomic-embed-text", config.LLM.EmbedModel)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "test-indexes", config.Index.Dir)
	assert.Equal(t, 500, config.Index.ChunkSize)
	assert.Equal(t, 100, config.Index.ChunkOverlap)
	assert.Equal(t, 25, config.Index.BatchSize)
	assert.Equal(t, 50, config.Index.MinTextLength)
	assert.Equal(t, "test-data", config.Data.Dir)
	assert.Equal(t, ":8080", config.Server.Addr)
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Minimal config: everything else should come from defaults
	err := os.WriteFile(configPath, []byte("llm:\n  model: \"mistral\"\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "mistral", config.LLM.Model)
	assert.Equal(t, "nomic-embed-text", config.LLM.EmbedModel)
	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, 800, config.Index.ChunkSize)
	assert.Equal(t, 150, config.Index.ChunkOverlap)
	assert.Equal(t, 50, config.Index.BatchSize)
	assert.Equal(t, 100, config.Index.MinTextLength)
	assert.Equal(t, "indexes", config.Index.Dir)
	assert.Equal(t, "data", config.Data.Dir)
}

func TestConfigValidation(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		errors := config.Validate()
		assert.Len(t, errors, 0)
	})

	t.Run("invalid config", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)
		config.LLM.BaseURL = ""
		config.LLM.MaxTokens = 5000
		config.LLM.Temperature = 3.0
		config.Index.ChunkOverlap = 900 // larger than chunk_size

		errors := config.Validate()
		assert.Len(t, errors, 4)

		messages := []string{
			"llm.base_url: Ollama base URL is required",
			"llm.max_tokens: max_tokens must be between 1 and 4096",
			"llm.temperature: temperature must be between 0 and 2",
			"index.chunk_overlap: chunk_overlap must be non-negative and less than chunk_size",
		}
		for i, msg := range messages {
			assert.Contains(t, errors[i].Error(), msg)
		}
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	// Set environment variables
	os.Setenv("OLLAMA_BASE_URL", "http://env-ollama:11434")
	os.Setenv("TUTOR_DATA_DIR", "/srv/tutor/data")
	os.Setenv("TUTOR_INDEX_DIR", "/srv/tutor/indexes")
	defer func() {
		os.Unsetenv("OLLAMA_BASE_URL")
		os.Unsetenv("TUTOR_DATA_DIR")
		os.Unsetenv("TUTOR_INDEX_DIR")
	}()

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "http://env-ollama:11434", config.LLM.BaseURL)
	assert.Equal(t, "/srv/tutor/data", config.Data.Dir)
	assert.Equal(t, "/srv/tutor/indexes", config.Index.Dir)
}
