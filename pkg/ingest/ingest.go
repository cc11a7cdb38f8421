package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xhad/tutor/internal/models"
	"github.com/xhad/tutor/internal/types"
	"github.com/xhad/tutor/pkg/registry"
)

// sourceExtensions lists the document types picked up from the data folder.
var sourceExtensions = map[string]bool{
	".pdf":  true,
	".html": true,
	".htm":  true,
	".txt":  true,
}

type OrchestratorConfig struct {
	DataDir    string
	OnProgress func(filename string)
}

// Orchestrator walks the data folder on startup and makes every document
// queryable: persisted indexes are loaded as-is, new documents are extracted
// and ingested. A document that fails is logged and skipped; it never aborts
// the rest of the batch.
type Orchestrator struct {
	config    OrchestratorConfig
	registry  *registry.Registry
	extractor types.TextExtractor
}

func NewWithConfig(config OrchestratorConfig, reg *registry.Registry, extractor types.TextExtractor) *Orchestrator {
	if config.DataDir == "" {
		config.DataDir = "data"
	}

	return &Orchestrator{
		config:    config,
		registry:  reg,
		extractor: extractor,
	}
}

// Run processes every source document in the data folder and returns the
// catalog of documents that ended up queryable.
func (o *Orchestrator) Run(ctx context.Context) ([]models.DocumentInfo, error) {
	if err := os.MkdirAll(o.config.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	entries, err := os.ReadDir(o.config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !sourceExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var catalog []models.DocumentInfo
	for _, name := range names {
		if o.config.OnProgress != nil {
			o.config.OnProgress(name)
		}

		if err := o.process(ctx, name); err != nil {
			log.Printf("skipping %s: %v", name, err)
			continue
		}

		catalog = append(catalog, models.DocumentInfo{
			Filename:  name,
			IndexName: registry.NormalizeName(name),
			Loaded:    true,
		})
	}

	return catalog, nil
}

func (o *Orchestrator) process(ctx context.Context, name string) error {
	id := registry.NormalizeName(name)

	// A persisted index makes text extraction unnecessary
	if _, ok, err := o.registry.EnsureLoaded(ctx, id); err != nil {
		return err
	} else if ok {
		return nil
	}

	text, err := o.extractor.Text(ctx, filepath.Join(o.config.DataDir, name))
	if err != nil {
		return err
	}

	_, err = o.registry.Ingest(ctx, id, text)
	return err
}
