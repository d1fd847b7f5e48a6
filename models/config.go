package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the pipeline. Values come from an
// optional YAML file; CLI flags override individual fields and the API key
// only ever comes from the environment.
type Config struct {
	// Sources to extract candidate links from.
	MainURLs []string `yaml:"main_urls"`

	UserAgent       string `yaml:"user_agent"`
	MaxLinksPerSite int    `yaml:"max_links_per_site"`

	// Ranking.
	TopKLinks       int `yaml:"top_k_links"`
	EmbeddingBudget int `yaml:"embedding_budget"`
	MinSelected     int `yaml:"min_selected"`

	// Document processing.
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	MaxWorkers   int `yaml:"max_workers"`

	// Answer generation.
	RetrieverK  int     `yaml:"retriever_k"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// Models.
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`

	CacheDir       string        `yaml:"cache_dir"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Never read from the file; populated from GEMINI_API_KEY.
	APIKey string `yaml:"-"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		MainURLs:        []string{},
		UserAgent:       "Mozilla/5.0 (compatible; CustomBot/1.0)",
		MaxLinksPerSite: 250,
		TopKLinks:       20,
		EmbeddingBudget: 30,
		MinSelected:     10,
		ChunkSize:       500,
		ChunkOverlap:    100,
		MaxWorkers:      5,
		RetrieverK:      3,
		Temperature:     0.3,
		MaxTokens:       100,
		EmbeddingModel:  "embedding-001",
		ChatModel:       "gemini-1.5-flash",
		CacheDir:        "cache",
		RequestTimeout:  10 * time.Second,
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A missing
// file is not an error: the defaults are returned so the CLI works without
// any configuration on disk.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	config.APIKey = os.Getenv("GEMINI_API_KEY")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", config.ChunkOverlap, config.ChunkSize)
	}

	return config, nil
}
