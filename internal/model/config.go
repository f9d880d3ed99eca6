package model

import (
	"runtime"
	"time"
)

// Config is the complete claimaudit configuration
type Config struct {
	Generator    GeneratorConfig    `yaml:"generator" mapstructure:"generator"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// GeneratorConfig controls synthetic claim generation
type GeneratorConfig struct {
	Seed           int64    `yaml:"seed" mapstructure:"seed"`             // 0 = seed from the clock
	Claims         int      `yaml:"claims" mapstructure:"claims"`         // Claims per document
	Categories     []string `yaml:"categories" mapstructure:"categories"` // Empty = all four
	SampleFileSize bool     `yaml:"sample_file_size" mapstructure:"sample_file_size"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	SessionTTL      time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	MaxClaims       int           `yaml:"max_claims" mapstructure:"max_claims"` // Upper bound per request
}

// RateLimitingConfig controls per-client request limits
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format   string   `yaml:"format" mapstructure:"format"` // json, yaml, markdown, html
	Dir      string   `yaml:"dir" mapstructure:"dir"`
	Sections Sections `yaml:"sections" mapstructure:"sections"`
	Verbose  bool     `yaml:"verbose" mapstructure:"verbose"`
}

// LLMConfig controls the optional executive summary narrative
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"` // "" disables, "openai"
	Model          string `yaml:"model" mapstructure:"model"`
	APIKey         string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url,omitempty" mapstructure:"base_url"` // Any OpenAI-compatible endpoint
	Timeout        int    `yaml:"timeout" mapstructure:"timeout"`             // seconds
	StrictEvidence bool   `yaml:"strict_evidence" mapstructure:"strict_evidence"`
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Claims:         5,
			SampleFileSize: true,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			SessionTTL:      time.Hour,
			CleanupInterval: 10 * time.Minute,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			MaxClaims:       1000,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 10,
			BurstSize:         20,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Format:   "json",
			Dir:      "./claimaudit-reports",
			Sections: DefaultSections(),
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			Timeout:        30,
			StrictEvidence: true,
			MaxTokens:      1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
