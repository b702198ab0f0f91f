package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Database struct {
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"database"`
	Ollama struct {
		BaseURL      string `yaml:"base_url"`
		DefaultModel string `yaml:"default_model"`
	} `yaml:"ollama"`
	Embeddings struct {
		TextModel string `yaml:"text_model"`
	} `yaml:"embeddings"`
	Processing struct {
		WindowSize     int    `yaml:"window_size"`
		WindowOverlap  int    `yaml:"window_overlap"`
		TopK           int    `yaml:"top_k"`
		ParseWorkers   int    `yaml:"parse_workers"`
		ParseTimeoutS  int    `yaml:"parse_timeout_seconds"`
		SearchTimeoutS int    `yaml:"search_timeout_seconds"`
		Language       string `yaml:"language"`
	} `yaml:"processing"`
	Criteria struct {
		WeightTolerance float64 `yaml:"weight_tolerance"`
	} `yaml:"criteria"`
	Paths struct {
		DocumentsDir string `yaml:"documents_dir"`
		LogFile      string `yaml:"log_file"`
	} `yaml:"paths"`
}

// Load loads configuration from file or returns defaults
func Load() (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(os.Getenv("HOME"), ".report-ai", "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configDir := filepath.Join(os.Getenv("HOME"), ".report-ai")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.Database.ConnectionString = "postgres://postgres@localhost/postgres?sslmode=disable"
	cfg.Ollama.BaseURL = "http://localhost:11434"
	cfg.Ollama.DefaultModel = ""
	cfg.Embeddings.TextModel = "nomic-embed-text"
	cfg.Processing.WindowSize = 2000
	cfg.Processing.WindowOverlap = 300
	cfg.Processing.TopK = 5
	cfg.Processing.ParseWorkers = 4
	cfg.Processing.ParseTimeoutS = 120
	cfg.Processing.SearchTimeoutS = 30
	cfg.Processing.Language = "English"
	cfg.Criteria.WeightTolerance = 0.001

	homeDir := os.Getenv("HOME")
	cfg.Paths.DocumentsDir = filepath.Join(homeDir, "reports")
	cfg.Paths.LogFile = filepath.Join(homeDir, ".report-ai", "report-ai.log")

	return cfg
}
