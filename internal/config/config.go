package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LLMConfig holds LLM provider configuration for assessment solving
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai", "anthropic", "perplexity", "ollama", or any OpenAI-compatible
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"` // custom endpoint; defaults per provider
	Model    string `yaml:"model"`    // defaults per provider
}

// Config holds application configuration
type Config struct {
	CAUTH        string    `yaml:"cauth"` // Coursera browser session cookie
	BaseURL      string    `yaml:"base_url"`
	VideoWorkers int       `yaml:"video_workers"` // 0 selects the built-in default
	LLM          LLMConfig `yaml:"llm"`
}

// GetLLMConfig returns the effective LLM configuration with env overrides
// applied.
func (c *Config) GetLLMConfig() LLMConfig {
	llm := c.LLM

	// Env vars override config file
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		llm.APIKey = key
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		llm.Provider = provider
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		llm.BaseURL = baseURL
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		llm.Model = model
	}

	return llm
}

// Load loads configuration from config file and environment variables
// Environment variables take precedence over config file values
func Load() (*Config, error) {
	cfg := &Config{}

	// Load from config file first
	if err := cfg.loadFromFile(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Environment variables override config file
	cfg.loadFromEnv()

	return cfg, nil
}

func (c *Config) loadFromFile() error {
	configPath := getConfigPath()
	if configPath == "" {
		return os.ErrNotExist
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if cauth := os.Getenv("COURSERA_CAUTH"); cauth != "" {
		c.CAUTH = cauth
	}
	if base := os.Getenv("COURSERA_BASE_URL"); base != "" {
		c.BaseURL = base
	}
	if workersStr := os.Getenv("SKIPERA_VIDEO_WORKERS"); workersStr != "" {
		if w, err := strconv.Atoi(workersStr); err == nil {
			c.VideoWorkers = w
		}
	}
}

// Save writes the config back to the config file, creating the directory if
// needed. Used by the first-run setup form.
func (c *Config) Save() error {
	dir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0600)
}

// getConfigPath returns the path to the config file
// Priority: $SKIPERA_CONFIG > ~/.config/skipera/config.yaml
func getConfigPath() string {
	if configPath := os.Getenv("SKIPERA_CONFIG"); configPath != "" {
		return configPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "skipera", "config.yaml")
}

// GetConfigDir returns the directory holding the config file
func GetConfigDir() (string, error) {
	configPath := getConfigPath()
	if configPath == "" {
		return "", fmt.Errorf("cannot determine config path")
	}
	return filepath.Dir(configPath), nil
}

// EnsureConfigDir ensures the config directory exists
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return configDir, nil
}
