package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Redacted replaces secret values in rendered output.
const Redacted = "********"

// ErrConfigExists indicates WriteDefault would overwrite an existing file.
var ErrConfigExists = errors.New("config file already exists")

// Render encodes cfg as TOML. Secrets are masked when redact is set.
func Render(cfg *Config, redact bool) ([]byte, error) {
	data, err := toml.Marshal(document(cfg, redact))
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the built-in configuration to path.
// An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := Render(Default(), false)
	if err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(path, data, 0600)
}

// Flatten returns cfg as dot-notation keys, e.g. "http.timeout".
func Flatten(cfg *Config, redact bool) map[string]any {
	return flattenMap(document(cfg, redact), "")
}

// Keys returns the known configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// document converts cfg into nested maps keyed like the TOML file.
// Durations are written as strings so they read back through viper.
func document(cfg *Config, redact bool) map[string]any {
	return map[string]any{
		"exa":       providerDocument(cfg.Exa, redact),
		"firecrawl": providerDocument(cfg.Firecrawl, redact),
		"search": map[string]any{
			"default_num_results": cfg.Search.DefaultNumResults,
			"include_domains":     nonNil(cfg.Search.IncludeDomains),
			"summary_query":       cfg.Search.SummaryQuery,
		},
		"http": map[string]any{
			"timeout":             cfg.HTTP.Timeout.String(),
			"requests_per_second": cfg.HTTP.RequestsPerSecond,
			"burst":               cfg.HTTP.Burst,
		},
		"retry": map[string]any{
			"max_attempts": cfg.Retry.MaxAttempts,
			"base_delay":   cfg.Retry.BaseDelay.String(),
			"max_delay":    cfg.Retry.MaxDelay.String(),
		},
		"dispatcher": map[string]any{
			"strict_arguments": cfg.Dispatcher.StrictArguments,
			"call_timeout":     cfg.Dispatcher.CallTimeout.String(),
		},
		"extract": map[string]any{
			"poll_interval": cfg.Extract.PollInterval.String(),
		},
	}
}

func providerDocument(p ProviderConfig, redact bool) map[string]any {
	key := p.APIKey
	if redact && key != "" {
		key = Redacted
	}
	return map[string]any{
		"api_key":  key,
		"base_url": p.BaseURL,
		"enabled":  p.Enabled,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}
