// Package config provides configuration loading and structs for the MedFinder server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug        bool               `yaml:"debug"`
	Server       ServerConfig       `yaml:"server"`
	Storage      StorageConfig      `yaml:"storage"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	LLM          LLMConfig          `yaml:"llm"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
	Availability AvailabilityConfig `yaml:"availability"`
	Interactions InteractionsConfig `yaml:"interactions"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the catalog and index artifacts.
type StorageConfig struct {
	CatalogPath      string `yaml:"catalog_path"`       // medicines JSON file
	CatalogDBPath    string `yaml:"catalog_db_path"`    // optional sqlite catalog (scraper output)
	IndexPath        string `yaml:"index_path"`         // vector index blob
	MetadataPath     string `yaml:"metadata_path"`      // position -> chunk map
	SuggestIndexPath string `yaml:"suggest_index_path"` // bleve index over medicine names
	WatchCatalog     bool   `yaml:"watch_catalog"`      // reload catalog on file change
}

// EmbeddingConfig holds remote embedding service settings.
type EmbeddingConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	BatchSize      int    `yaml:"batch_size"`
	CacheSize      int    `yaml:"cache_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LLMConfig holds generative model settings.
type LLMConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Model          string  `yaml:"model"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Enabled        *bool   `yaml:"enabled"`
}

// EnabledOrDefault returns whether the generative model is enabled; defaults to true.
func (l *LLMConfig) EnabledOrDefault() bool {
	if l.Enabled != nil {
		return *l.Enabled
	}
	return true
}

// PipelineConfig holds retrieval and recommendation pipeline tunables.
type PipelineConfig struct {
	TopK             int     `yaml:"top_k"`
	MinScore         float64 `yaml:"min_score"`         // inclusion threshold for retrieved chunks
	HighConfidence   float64 `yaml:"high_confidence"`   // stricter threshold for "sufficient retrieval"
	RegexConfidence  float64 `yaml:"regex_confidence"`  // escalate to LLM below this
	FallbackEnabled  *bool   `yaml:"fallback_enabled"`  // generative fallback on zero regex hits
	MaxResults       int     `yaml:"max_results"`
	MaxContextChunks int     `yaml:"max_context_chunks"`
	ChunkCharBudget  int     `yaml:"chunk_char_budget"`
	MatchLimit       int     `yaml:"match_limit"` // catalog matches kept per formula
}

// FallbackEnabledOrDefault returns whether the generative fallback runs; defaults to true.
func (p *PipelineConfig) FallbackEnabledOrDefault() bool {
	if p.FallbackEnabled != nil {
		return *p.FallbackEnabled
	}
	return true
}

// AvailabilityConfig holds external availability API and cache settings.
type AvailabilityConfig struct {
	APIBase        string `yaml:"api_base"`
	TTLHours       int    `yaml:"ttl_hours"`
	RedisAddr      string `yaml:"redis_addr"` // empty = in-memory cache
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// InteractionsConfig holds drug-label reference API settings.
type InteractionsConfig struct {
	APIBase        string `yaml:"api_base"` // empty = interaction checks disabled
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.CatalogPath = expandPath(cfg.Storage.CatalogPath, configDir)
	if cfg.Storage.CatalogDBPath != "" {
		cfg.Storage.CatalogDBPath = expandPath(cfg.Storage.CatalogDBPath, configDir)
	}
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	cfg.Storage.MetadataPath = expandPath(cfg.Storage.MetadataPath, configDir)
	cfg.Storage.SuggestIndexPath = expandPath(cfg.Storage.SuggestIndexPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
