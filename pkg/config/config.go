package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		EmbedModel  string  `yaml:"embed_model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		RateLimit   float64 `yaml:"rate_limit"`
	} `yaml:"llm"`

	Index struct {
		Dir           string `yaml:"dir"`
		ChunkSize     int    `yaml:"chunk_size"`
		ChunkOverlap  int    `yaml:"chunk_overlap"`
		BatchSize     int    `yaml:"batch_size"`
		MinTextLength int    `yaml:"min_text_length"`
	} `yaml:"index"`

	Data struct {
		Dir string `yaml:"dir"`
	} `yaml:"data"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/tutor/config.yaml"),
			"/etc/tutor/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "llama3"
	}
	if config.LLM.EmbedModel == "" {
		config.LLM.EmbedModel = "nomic-embed-text"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.RateLimit == 0 {
		config.LLM.RateLimit = 2.0
	}

	if config.Index.Dir == "" {
		config.Index.Dir = "indexes"
	}
	if config.Index.ChunkSize == 0 {
		config.Index.ChunkSize = 800
	}
	if config.Index.ChunkOverlap == 0 {
		config.Index.ChunkOverlap = 150
	}
	if config.Index.BatchSize == 0 {
		config.Index.BatchSize = 50
	}
	if config.Index.MinTextLength == 0 {
		config.Index.MinTextLength = 100
	}

	if config.Data.Dir == "" {
		config.Data.Dir = "data"
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":5001"
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dataDir := os.Getenv("TUTOR_DATA_DIR"); dataDir != "" {
		config.Data.Dir = dataDir
	}
	if indexDir := os.Getenv("TUTOR_INDEX_DIR"); indexDir != "" {
		config.Index.Dir = indexDir
	}
}
