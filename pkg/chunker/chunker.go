package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// ErrEmptyInput is returned when splitting produces no chunks, e.g. for
// empty or whitespace-only text. Index creation must abort on it rather
// than persist an empty index.
var ErrEmptyInput = errors.New("no chunks created from text")

type ChunkerConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Chunker splits raw document text into overlapping chunks, preferring
// paragraph, sentence and word boundaries over hard cuts.
type Chunker struct {
	config   ChunkerConfig
	splitter textsplitter.RecursiveCharacter
}

func NewWithConfig(config ChunkerConfig) Chunker {
	if config.ChunkSize == 0 {
		config.ChunkSize = 800
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 150
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(config.ChunkSize),
		textsplitter.WithChunkOverlap(config.ChunkOverlap),
	)

	return Chunker{
		config:   config,
		splitter: splitter,
	}
}

// Split breaks text into ordered chunks of at most the configured size with
// the configured overlap between neighbours.
func (c *Chunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	chunks, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	// Drop whitespace-only fragments the splitter may emit
	out := chunks[:0]
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) != "" {
			out = append(out, chunk)
		}
	}

	if len(out) == 0 {
		return nil, ErrEmptyInput
	}

	return out, nil
}
