package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/tutor/pkg/llm"
)

func TestNewEmbedderWithConfig(t *testing.T) {
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     "nomic-embed-text",
		BaseURL:   "http://localhost:11434",
		RateLimit: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, embedder)
	assert.Equal(t, "nomic-embed-text", embedder.Model())
}

func TestNewEmbedderDefaults(t *testing.T) {
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", embedder.Model())
}
