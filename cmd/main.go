package main

import (
	"flag"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	cfgPkg "github.com/xhad/tutor/pkg/config"
)

type Config struct {
	BaseURL       string
	Model         string
	EmbedModel    string
	DataDir       string
	IndexDir      string
	Addr          string
	ChunkSize     int
	ChunkOverlap  int
	BatchSize     int
	MinTextLength int
	RateLimit     float64
	MaxTokens     int
	Temperature   float64
	Serve         bool
}

func main() {
	config := parseFlags()

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() Config {
	var config Config
	var configPath string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&config.BaseURL, "ollama-url", os.Getenv("OLLAMA_BASE_URL"), "Ollama server URL")
	flag.StringVar(&config.Model, "model", "", "LLM model to use")
	flag.StringVar(&config.EmbedModel, "embed-model", "", "Embedding model to use")
	flag.StringVar(&config.DataDir, "data", "", "Folder containing source documents")
	flag.StringVar(&config.IndexDir, "indexes", "", "Folder containing persisted indexes")
	flag.StringVar(&config.Addr, "addr", "", "API listen address")
	flag.IntVar(&config.ChunkSize, "chunk-size", 0, "Size of text chunks")
	flag.IntVar(&config.ChunkOverlap, "chunk-overlap", 0, "Overlap between neighbouring chunks")
	flag.IntVar(&config.BatchSize, "batch-size", 0, "Chunks embedded per request")
	flag.Float64Var(&config.RateLimit, "rate-limit", 0, "Embedding requests per second")
	flag.IntVar(&config.MaxTokens, "max-tokens", 0, "Maximum tokens for LLM response")
	flag.Float64Var(&config.Temperature, "temperature", 0, "Set the LLM temperature")
	flag.BoolVar(&config.Serve, "serve", false, "Serve the HTTP API instead of the interactive prompt")
	flag.Parse()

	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Flags override config file values
	if config.BaseURL == "" {
		config.BaseURL = cfg.LLM.BaseURL
	}
	if config.Model == "" {
		config.Model = cfg.LLM.Model
	}
	if config.EmbedModel == "" {
		config.EmbedModel = cfg.LLM.EmbedModel
	}
	if config.DataDir == "" {
		config.DataDir = cfg.Data.Dir
	}
	if config.IndexDir == "" {
		config.IndexDir = cfg.Index.Dir
	}
	if config.Addr == "" {
		config.Addr = cfg.Server.Addr
	}
	if config.ChunkSize == 0 {
		config.ChunkSize = cfg.Index.ChunkSize
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = cfg.Index.ChunkOverlap
	}
	if config.BatchSize == 0 {
		config.BatchSize = cfg.Index.BatchSize
	}
	config.MinTextLength = cfg.Index.MinTextLength
	if config.RateLimit == 0 {
		config.RateLimit = cfg.LLM.RateLimit
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = cfg.LLM.MaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = cfg.LLM.Temperature
	}

	return config
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
