package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/xhad/tutor/internal/types"
	"github.com/xhad/tutor/pkg/index"
)

// ErrEmptyDocument is returned by Ingest when the extracted text is missing
// or too short to index. Callers skip such documents; they are not fatal.
var ErrEmptyDocument = errors.New("document text is empty or unreadable")

type RegistryConfig struct {
	Dir           string // directory holding one index file per document
	BatchSize     int    // chunks embedded per request during builds
	MinTextLength int    // documents shorter than this are rejected
}

// Registry maps normalized document identifiers to their vector indexes. It
// owns the process-wide cache of loaded indexes: entries are registered at
// ingestion time or lazily materialized from disk on first query, and live
// until the process exits.
//
// Loads and builds collapse through a single-flight group under separate
// per-operation keys, so a query racing an ingestion of the same document
// never inherits the other path's outcome: duplicate loads share one disk
// read, duplicate builds share one embedding pass, and a query that arrives
// before the build's atomic save simply misses until the index is
// registered. Queries against different documents never contend.
type Registry struct {
	config   RegistryConfig
	embedder types.Embedder
	chunker  types.Chunker

	mu      sync.RWMutex
	indexes map[string]*index.Index
	group   singleflight.Group
}

func NewWithConfig(config RegistryConfig, embedder types.Embedder, chunker types.Chunker) *Registry {
	if config.Dir == "" {
		config.Dir = "indexes"
	}
	if config.BatchSize == 0 {
		config.BatchSize = index.DefaultBatchSize
	}
	if config.MinTextLength == 0 {
		config.MinTextLength = 100
	}

	return &Registry{
		config:   config,
		embedder: embedder,
		chunker:  chunker,
		indexes:  make(map[string]*index.Index),
	}
}

// IndexPath returns the canonical on-disk location for a document's index.
func (r *Registry) IndexPath(id string) string {
	return filepath.Join(r.config.Dir, id+".db")
}

// EnsureLoaded returns the index for id, loading it from disk if it is
// persisted but not yet in memory. An in-memory hit returns without any
// I/O. The second return value is false when no index is available, which
// is a normal outcome, not an error.
func (r *Registry) EnsureLoaded(ctx context.Context, id string) (*index.Index, bool, error) {
	if ix, ok := r.get(id); ok {
		return ix, true, nil
	}

	v, err, _ := r.group.Do("load:"+id, func() (interface{}, error) {
		if ix, ok := r.get(id); ok {
			return ix, nil
		}

		ix, err := index.Load(r.IndexPath(id), r.embedder)
		if err != nil {
			return nil, err
		}

		r.put(id, ix)
		return ix, nil
	})
	if err != nil {
		if errors.Is(err, index.ErrIndexNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return v.(*index.Index), true, nil
}

// Ingest makes an index available for id. If one is already persisted it is
// loaded as-is: re-running ingestion never re-embeds an unchanged document.
// Otherwise the raw text is chunked, embedded in batches, persisted and
// registered. Text shorter than the configured minimum fails with
// ErrEmptyDocument.
func (r *Registry) Ingest(ctx context.Context, id string, rawText string) (*index.Index, error) {
	v, err, _ := r.group.Do("build:"+id, func() (interface{}, error) {
		if ix, ok := r.get(id); ok {
			return ix, nil
		}

		// Reuse the persisted index when present
		ix, err := index.Load(r.IndexPath(id), r.embedder)
		if err == nil {
			r.put(id, ix)
			return ix, nil
		}
		if !errors.Is(err, index.ErrIndexNotFound) {
			return nil, err
		}

		if len(strings.TrimSpace(rawText)) < r.config.MinTextLength {
			return nil, fmt.Errorf("%w: %d characters", ErrEmptyDocument, len(strings.TrimSpace(rawText)))
		}

		chunks, err := r.chunker.Split(rawText)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk document: %w", err)
		}

		ix, err = index.Build(ctx, chunks, r.embedder, r.config.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to build index: %w", err)
		}

		if err := ix.Save(r.IndexPath(id)); err != nil {
			return nil, fmt.Errorf("failed to persist index: %w", err)
		}

		r.put(id, ix)
		return ix, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*index.Index), nil
}

// Loaded returns the identifiers of all indexes currently in memory.
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.indexes))
	for id := range r.indexes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) get(id string) (*index.Index, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ix, ok := r.indexes[id]
	return ix, ok
}

func (r *Registry) put(id string, ix *index.Index) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexes[id] = ix
}
