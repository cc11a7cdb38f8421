package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/xhad/tutor/internal/models"
	"github.com/xhad/tutor/pkg/chunker"
	"github.com/xhad/tutor/pkg/extract"
	"github.com/xhad/tutor/pkg/ingest"
	"github.com/xhad/tutor/pkg/llm"
	"github.com/xhad/tutor/pkg/rag"
	"github.com/xhad/tutor/pkg/registry"
	"github.com/xhad/tutor/server"
)

func run(config Config) error {
	// Initialize components
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     config.EmbedModel,
		BaseURL:   config.BaseURL,
		RateLimit: config.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	generator, err := llm.NewGeneratorWithConfig(llm.GeneratorConfig{
		Model:       config.Model,
		MaxTokens:   config.MaxTokens,
		Temperature: config.Temperature,
		BaseURL:     config.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %v", err)
	}

	splitter := chunker.NewWithConfig(chunker.ChunkerConfig{
		ChunkSize:    config.ChunkSize,
		ChunkOverlap: config.ChunkOverlap,
	})

	reg := registry.NewWithConfig(registry.RegistryConfig{
		Dir:           config.IndexDir,
		BatchSize:     config.BatchSize,
		MinTextLength: config.MinTextLength,
	}, embedder, &splitter)

	// Ingest the data folder with a progress bar
	ingestBar := getProgressBar(-1, " Indexing documents...")

	orchestrator := ingest.NewWithConfig(ingest.OrchestratorConfig{
		DataDir: config.DataDir,
		OnProgress: func(filename string) {
			ingestBar.Describe(color.BlueString("Indexing %s", filename))
			ingestBar.Add(1)
		},
	}, reg, extract.New())

	catalog, err := orchestrator.Run(context.Background())
	if err != nil {
		return fmt.Errorf("failed to ingest documents: %v", err)
	}
	ingestBar.Finish()
	color.Green("✓ %d document(s) ready\n", len(catalog))

	chain := rag.New(reg, generator)

	if config.Serve {
		return server.NewWithConfig(server.Config{
			Addr: config.Addr,
		}, chain, catalog).ListenAndServe()
	}

	return repl(chain, catalog)
}

// repl runs the interactive ask loop: pick a document, then ask away.
func repl(chain *rag.Chain, catalog []models.DocumentInfo) error {
	if len(catalog) == 0 {
		color.Yellow("No documents found in the data folder. Add some and restart.")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)

	current, err := selectDocument(reader, catalog)
	if err != nil {
		return err
	}

	color.Blue("\nAsk questions about %s. Type /docs to switch documents, /quit to exit.\n", current.Filename)

	for {
		fmt.Print("\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil // EOF ends the session
		}

		question := strings.TrimSpace(line)
		switch {
		case question == "":
			continue
		case question == "/quit", question == "/exit":
			return nil
		case question == "/docs":
			current, err = selectDocument(reader, catalog)
			if err != nil {
				return err
			}
			continue
		}

		spinner := getSpinner(" Thinking...")
		answer := chain.AnswerQuestion(context.Background(), question, current.IndexName)
		spinner.Finish()

		fmt.Printf("\n%s\n", answer)
	}
}

func selectDocument(reader *bufio.Reader, catalog []models.DocumentInfo) (models.DocumentInfo, error) {
	color.Blue("Available documents:")
	for i, doc := range catalog {
		fmt.Printf("  %d. %s\n", i+1, doc.Filename)
	}

	for {
		fmt.Print("Select a document: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return models.DocumentInfo{}, fmt.Errorf("no document selected")
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && choice >= 1 && choice <= len(catalog) {
			return catalog[choice-1], nil
		}

		color.Red("Enter a number between 1 and %d", len(catalog))
	}
}
