package registry_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/tutor/pkg/chunker"
	"github.com/xhad/tutor/pkg/registry"
)

// countingEmbedder returns deterministic keyword-derived vectors and counts
// embedding calls so tests can prove an index was not rebuilt.
type countingEmbedder struct {
	embedCalls int32
}

func (e *countingEmbedder) Model() string { return "stub-model" }

func (e *countingEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&e.embedCalls, 1)

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = vectorFor(text)
	}
	return out, nil
}

func (e *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *countingEmbedder) calls() int32 {
	return atomic.LoadInt32(&e.embedCalls)
}

func vectorFor(text string) []float32 {
	switch {
	case strings.Contains(text, "Paris"):
		return []float32{1, 0, 0}
	case strings.Contains(text, "capital"):
		return []float32{0.9, 0.1, 0}
	default:
		return []float32{0, 1, 0}
	}
}

const parisText = "The capital of France is Paris. The Seine crosses the city " +
	"from east to west, and the Eiffel Tower stands on its left bank near the " +
	"Champ de Mars."

func newTestRegistry(t *testing.T, dir string) (*registry.Registry, *countingEmbedder) {
	t.Helper()

	embedder := &countingEmbedder{}
	splitter := chunker.NewWithConfig(chunker.ChunkerConfig{})

	reg := registry.NewWithConfig(registry.RegistryConfig{
		Dir:           dir,
		BatchSize:     50,
		MinTextLength: 100,
	}, embedder, &splitter)

	return reg, embedder
}

func TestIngestAndEnsureLoaded(t *testing.T) {
	reg, _ := newTestRegistry(t, t.TempDir())
	ctx := context.Background()

	ix, err := reg.Ingest(ctx, "france_guide", parisText)
	require.NoError(t, err)
	require.NotNil(t, ix)
	assert.Greater(t, ix.Len(), 0)

	// Persisted at the canonical path
	_, err = os.Stat(reg.IndexPath("france_guide"))
	require.NoError(t, err)

	loaded, ok, err := reg.EnsureLoaded(ctx, "france_guide")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, ix, loaded)

	assert.Equal(t, []string{"france_guide"}, reg.Loaded())
}

func TestIngestIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	reg, embedder := newTestRegistry(t, dir)
	_, err := reg.Ingest(ctx, "france_guide", parisText)
	require.NoError(t, err)

	buildCalls := embedder.calls()
	require.Greater(t, buildCalls, int32(0))

	// Same registry: second ingest is a memory hit
	_, err = reg.Ingest(ctx, "france_guide", parisText)
	require.NoError(t, err)
	assert.Equal(t, buildCalls, embedder.calls())

	// Fresh registry over the same directory: the persisted index is
	// loaded instead of rebuilt, so no chunk is re-embedded
	fresh, freshEmbedder := newTestRegistry(t, dir)
	_, err = fresh.Ingest(ctx, "france_guide", parisText)
	require.NoError(t, err)
	assert.Equal(t, int32(0), freshEmbedder.calls())
}

func TestIngestRejectsShortDocument(t *testing.T) {
	reg, embedder := newTestRegistry(t, t.TempDir())
	ctx := context.Background()

	for _, text := range []string{"", "   ", "too short to index"} {
		_, err := reg.Ingest(ctx, "thin_pamphlet", text)
		require.Error(t, err)
		assert.True(t, errors.Is(err, registry.ErrEmptyDocument))
	}

	// Nothing was embedded, persisted or registered
	assert.Equal(t, int32(0), embedder.calls())
	_, statErr := os.Stat(reg.IndexPath("thin_pamphlet"))
	assert.True(t, os.IsNotExist(statErr))

	_, ok, err := reg.EnsureLoaded(ctx, "thin_pamphlet")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnsureLoadedUnknownDocument(t *testing.T) {
	reg, _ := newTestRegistry(t, t.TempDir())

	ix, ok, err := reg.EnsureLoaded(context.Background(), "never_ingested")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ix)
}

func TestEnsureLoadedFromDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	reg, _ := newTestRegistry(t, dir)
	_, err := reg.Ingest(ctx, "france_guide", parisText)
	require.NoError(t, err)

	// Fresh registry: not in memory, must lazily load the persisted file
	fresh, freshEmbedder := newTestRegistry(t, dir)
	ix, ok, err := fresh.EnsureLoaded(ctx, "france_guide")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, ix.Len(), 0)
	assert.Equal(t, int32(0), freshEmbedder.calls())
}

func TestConcurrentIngestBuildsOnce(t *testing.T) {
	reg, embedder := newTestRegistry(t, t.TempDir())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Ingest(ctx, "france_guide", parisText)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// One batched build for a single-chunk document is one embed call;
	// concurrent ingestion must not multiply it
	assert.Equal(t, int32(1), embedder.calls())
}

func TestIngestNotDerailedByConcurrentQueries(t *testing.T) {
	reg, embedder := newTestRegistry(t, t.TempDir())
	ctx := context.Background()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			_, ok, err := reg.EnsureLoaded(ctx, "thin_pamphlet")
			assert.NoError(t, err)
			assert.False(t, ok)
		}
	}()

	// Ingestion of sub-threshold text must fail on its own terms even when
	// a query's cache miss is in flight for the same identifier
	for i := 0; i < 200; i++ {
		_, err := reg.Ingest(ctx, "thin_pamphlet", "too short to index")
		require.Error(t, err)
		assert.True(t, errors.Is(err, registry.ErrEmptyDocument))
	}
	close(done)
	wg.Wait()

	assert.Equal(t, int32(0), embedder.calls())
}

func TestQueriesRacingIngestionBuildOnce(t *testing.T) {
	reg, embedder := newTestRegistry(t, t.TempDir())
	ctx := context.Background()

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				// Before the build completes this is a normal miss, never
				// an error; afterwards it must see the finished index
				ix, ok, err := reg.EnsureLoaded(ctx, "france_guide")
				assert.NoError(t, err)
				if ok {
					assert.Greater(t, ix.Len(), 0)
				}
			}
		}()
	}

	ix, err := reg.Ingest(ctx, "france_guide", parisText)
	close(done)
	wg.Wait()

	require.NoError(t, err)
	require.NotNil(t, ix)
	assert.Equal(t, int32(1), embedder.calls())

	loaded, ok, err := reg.EnsureLoaded(ctx, "france_guide")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, loaded.Len(), 0)
}
