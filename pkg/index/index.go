package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/xhad/tutor/internal/models"
	"github.com/xhad/tutor/internal/types"
)

// DefaultBatchSize is the number of chunks embedded per request during index
// construction. Batching bounds peak memory and request size; batches run
// sequentially and the final index is identical to an unbatched build.
const DefaultBatchSize = 50

// Index is an in-memory vector index over the chunks of one document. It is
// immutable after construction and safe for concurrent searches.
//
// Relevance scores are cosine similarities: higher is more relevant, 0 is
// the no-relevance floor. Chunks whose similarity cannot be computed (zero
// magnitude) score 0.
type Index struct {
	model  string
	dim    int
	chunks []string
	vecs   [][]float32
	mags   []float64

	embedder types.Embedder
}

// Build embeds chunks in fixed-size sequential batches and assembles the
// index. Chunk order is preserved. The embedder is retained so queries are
// embedded with the same model as the chunks.
func Build(ctx context.Context, chunks []string, embedder types.Embedder, batchSize int) (*Index, error) {
	if len(chunks) == 0 {
		return nil, errors.New("cannot build index from zero chunks")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	ix := &Index{
		model:    embedder.Model(),
		chunks:   append([]string(nil), chunks...),
		embedder: embedder,
	}

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		vectors, err := embedder.EmbedDocuments(ctx, chunks[i:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", i, end, err)
		}

		if err := ix.extend(vectors); err != nil {
			return nil, err
		}
	}

	return ix, nil
}

// extend appends a batch of vectors, enforcing dimension consistency.
func (ix *Index) extend(vectors [][]float32) error {
	for _, vec := range vectors {
		if ix.dim == 0 {
			ix.dim = len(vec)
		}
		if len(vec) != ix.dim || ix.dim == 0 {
			return fmt.Errorf("inconsistent vector dimension: got %d, want %d", len(vec), ix.dim)
		}
		ix.vecs = append(ix.vecs, vec)
		ix.mags = append(ix.mags, magnitude(vec))
	}
	return nil
}

// Model returns the name of the embedding model the index was built with.
func (ix *Index) Model() string {
	return ix.model
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Search embeds the query and returns the k most similar chunks ordered by
// non-increasing score. Exact ties keep chunk insertion order.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	queryVec, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(queryVec) != ix.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(queryVec), ix.dim)
	}

	queryMag := magnitude(queryVec)

	results := make([]models.SearchResult, len(ix.chunks))
	for i := range ix.chunks {
		results[i] = models.SearchResult{
			Text:  ix.chunks[i],
			Score: cosine(queryVec, queryMag, ix.vecs[i], ix.mags[i]),
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if k <= 0 || k > len(results) {
		k = len(results)
	}

	return results[:k], nil
}

// cosine computes cosine similarity given precomputed magnitudes, mapping
// degenerate vectors to the 0 relevance floor.
func cosine(q []float32, qm float64, v []float32, vm float64) float64 {
	if qm == 0 || vm == 0 {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(v[i])
	}
	score := dot / (qm * vm)
	if math.IsNaN(score) {
		return 0
	}
	return score
}

func magnitude(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
