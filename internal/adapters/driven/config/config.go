// Package config loads webrelay configuration from defaults, an optional
// TOML file, an optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig indicates a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the effective webrelay configuration.
type Config struct {
	Exa        ProviderConfig   `mapstructure:"exa"`
	Firecrawl  ProviderConfig   `mapstructure:"firecrawl"`
	Search     SearchConfig     `mapstructure:"search"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Extract    ExtractConfig    `mapstructure:"extract"`

	// Path is the config file that was read, empty when none was.
	Path string `mapstructure:"-"`
}

// ProviderConfig configures one upstream API.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Enabled bool   `mapstructure:"enabled"`
}

// SearchConfig holds defaults for the search tools.
type SearchConfig struct {
	DefaultNumResults int      `mapstructure:"default_num_results"`
	IncludeDomains    []string `mapstructure:"include_domains"`
	SummaryQuery      string   `mapstructure:"summary_query"`
}

// HTTPConfig holds settings shared by every upstream client.
type HTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// RetryConfig controls backoff for transient upstream failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// DispatcherConfig controls tool call handling.
type DispatcherConfig struct {
	StrictArguments bool          `mapstructure:"strict_arguments"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
}

// ExtractConfig controls structured extraction jobs.
type ExtractConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// defaults lists every key with its built-in value.
// Every key must appear here for environment overrides to apply.
var defaults = map[string]any{
	"exa.api_key":                 "",
	"exa.base_url":                "https://api.exa.ai",
	"exa.enabled":                 true,
	"firecrawl.api_key":           "",
	"firecrawl.base_url":          "https://api.firecrawl.dev/v1",
	"firecrawl.enabled":           true,
	"search.default_num_results":  5,
	"search.include_domains":      []string{},
	"search.summary_query":        "Main points and key takeaways",
	"http.timeout":                30 * time.Second,
	"http.requests_per_second":    5.0,
	"http.burst":                  5,
	"retry.max_attempts":          3,
	"retry.base_delay":            500 * time.Millisecond,
	"retry.max_delay":             5 * time.Second,
	"dispatcher.strict_arguments": false,
	"dispatcher.call_timeout":     2 * time.Minute,
	"extract.poll_interval":       2 * time.Second,
}

// Default returns the built-in configuration. It matches defaults.
func Default() *Config {
	return &Config{
		Exa: ProviderConfig{
			BaseURL: "https://api.exa.ai",
			Enabled: true,
		},
		Firecrawl: ProviderConfig{
			BaseURL: "https://api.firecrawl.dev/v1",
			Enabled: true,
		},
		Search: SearchConfig{
			DefaultNumResults: 5,
			IncludeDomains:    []string{},
			SummaryQuery:      "Main points and key takeaways",
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    5 * time.Second,
		},
		Dispatcher: DispatcherConfig{
			CallTimeout: 2 * time.Minute,
		},
		Extract: ExtractConfig{
			PollInterval: 2 * time.Second,
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string
	if c.Search.DefaultNumResults <= 0 {
		problems = append(problems, "search.default_num_results must be positive")
	}
	if c.HTTP.Timeout < 0 {
		problems = append(problems, "http.timeout must not be negative")
	}
	if c.HTTP.RequestsPerSecond < 0 {
		problems = append(problems, "http.requests_per_second must not be negative")
	}
	if c.Retry.MaxAttempts < 1 {
		problems = append(problems, "retry.max_attempts must be at least 1")
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		problems = append(problems, "retry delays must not be negative")
	}
	if c.Dispatcher.CallTimeout < 0 {
		problems = append(problems, "dispatcher.call_timeout must not be negative")
	}
	if c.Extract.PollInterval <= 0 {
		problems = append(problems, "extract.poll_interval must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
