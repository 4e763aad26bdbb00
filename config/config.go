package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Provider   ProviderConfig   `yaml:"provider"`
	Universe   UniverseConfig   `yaml:"universe"`
	Processing ProcessingConfig `yaml:"processing"`
	Output     OutputConfig     `yaml:"output"`
}

// ProviderConfig configures the market-data provider client.
type ProviderConfig struct {
	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
	RequestsPerSecond     float64 `yaml:"requests_per_second"`
	BaseURL               string  `yaml:"base_url"`
	ScrapeURL             string  `yaml:"scrape_url"`
}

// UniverseConfig configures where the ticker list comes from.
type UniverseConfig struct {
	TickerFile string `yaml:"ticker_file"`
	ListURL    string `yaml:"list_url"`
	MaxTickers int    `yaml:"max_tickers"` // 0 = no limit
}

// ProcessingConfig configures the scan itself.
type ProcessingConfig struct {
	MaxWorkers int `yaml:"max_workers"`
}

// OutputConfig configures the result sink and terminal display.
type OutputConfig struct {
	File         string `yaml:"file"`
	ShowColors   bool   `yaml:"show_colors"`
	ShowProgress bool   `yaml:"show_progress"`
	SampleSize   int    `yaml:"sample_size"`
}

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			RequestTimeoutSeconds: 10,
			RequestsPerSecond:     2,
		},
		Universe: UniverseConfig{
			ListURL: "https://raw.githubusercontent.com/rreichel3/US-Stock-Symbols/main/nasdaq/nasdaq_tickers.txt",
		},
		Processing: ProcessingConfig{
			MaxWorkers: 1,
		},
		Output: OutputConfig{
			File:         "nasdaq_valuation_scan.csv",
			ShowColors:   true,
			ShowProgress: true,
			SampleSize:   10,
		},
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Provider.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.Provider.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive")
	}
	if c.Processing.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive")
	}
	if c.Universe.MaxTickers < 0 {
		return fmt.Errorf("max tickers cannot be negative")
	}
	if c.Output.File == "" {
		return fmt.Errorf("output file must be set")
	}
	if c.Output.SampleSize < 0 {
		return fmt.Errorf("sample size cannot be negative")
	}
	return nil
}
