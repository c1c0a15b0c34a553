package model

import "time"

// Config is the complete application configuration.
type Config struct {
	Corpus      CorpusConfig      `yaml:"corpus"`
	Search      SearchConfig      `yaml:"search"`
	Registry    RegistryConfig    `yaml:"registry"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
	Storage     StorageConfig     `yaml:"storage"`
	LLM         LLMConfig         `yaml:"llm"`
}

// CorpusConfig locates the historical trial corpus.
type CorpusConfig struct {
	Path string `yaml:"path"` // JSON document with a "trials" array
}

// SearchConfig tunes similarity search.
type SearchConfig struct {
	TopK int `yaml:"top_k"`
}

// RegistryConfig configures the ClinicalTrials.gov client.
type RegistryConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	PageSize          int           `yaml:"page_size"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

// MarshalYAML renders duration fields as strings ("30s", "24h0m0s") so
// generated config files stay human-editable. Viper parses them back.
func (c RegistryConfig) MarshalYAML() (interface{}, error) {
	type plain struct {
		BaseURL           string  `yaml:"base_url"`
		Timeout           string  `yaml:"timeout"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		PageSize          int     `yaml:"page_size"`
		CacheTTL          string  `yaml:"cache_ttl"`
	}
	return plain{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout.String(),
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		PageSize:          c.PageSize,
		CacheTTL:          c.CacheTTL.String(),
	}, nil
}

// CacheConfig configures the in-memory cache.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	DefaultTTL      time.Duration `yaml:"default_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// MarshalYAML renders duration fields as strings, as for RegistryConfig.
func (c CacheConfig) MarshalYAML() (interface{}, error) {
	type plain struct {
		Enabled         bool   `yaml:"enabled"`
		DefaultTTL      string `yaml:"default_ttl"`
		CleanupInterval string `yaml:"cleanup_interval"`
	}
	return plain{
		Enabled:         c.Enabled,
		DefaultTTL:      c.DefaultTTL.String(),
		CleanupInterval: c.CleanupInterval.String(),
	}, nil
}

// ConcurrencyConfig configures batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// StorageConfig locates the assessment history store.
type StorageConfig struct {
	Dir string `yaml:"dir"` // empty disables persistence
}

// LLMConfig configures the optional narrative-findings provider.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // from environment, never written to config files
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// DefaultConfig returns the built-in defaults. Flags, environment variables
// and the config file override these.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Path: "historical_trials.json",
		},
		Search: SearchConfig{
			TopK: 5,
		},
		Registry: RegistryConfig{
			BaseURL:           "https://clinicaltrials.gov/api/v2",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			Burst:             5,
			PageSize:          20,
			CacheTTL:          24 * time.Hour,
		},
		Cache: CacheConfig{
			Enabled:         true,
			DefaultTTL:      time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
		Storage: StorageConfig{
			Dir: "",
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "",
			Timeout:   30,
			MaxTokens: 2000,
		},
	}
}
