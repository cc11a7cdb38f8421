package types

import "context"

// Core interfaces

// Embedder maps text to fixed-length numeric vectors. Implementations must be
// deterministic for a fixed model; mixing models between index build and
// query silently corrupts relevance, so the model name travels with every
// persisted index.
type Embedder interface {
	Model() string
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator produces an answer from a fully assembled prompt. It may fail
// transiently; callers convert failures to user-facing messages.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chunker splits raw document text into overlapping retrievable units.
type Chunker interface {
	Split(text string) ([]string, error)
}

// TextExtractor obtains raw text from a source document on disk. The binary
// format handling behind it is opaque to the rest of the system.
type TextExtractor interface {
	Text(ctx context.Context, path string) (string, error)
}
