package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/custodia-labs/webrelay/internal/logger"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. WEBRELAY_HTTP_TIMEOUT.
	EnvPrefix = "WEBRELAY"

	// DefaultEnvFile is loaded from the working directory when present.
	DefaultEnvFile = ".env"

	configDirName  = ".webrelay"
	configFileName = "config.toml"
)

// credentialEnv maps keys to the conventional provider variables.
var credentialEnv = map[string]string{
	"exa.api_key":       "EXA_API_KEY",
	"firecrawl.api_key": "FIRECRAWL_API_KEY",
}

// Options selects the sources Load reads.
type Options struct {
	// ConfigFile is an explicit TOML path. It must exist when set.
	// When empty, DefaultPath is read if present.
	ConfigFile string

	// EnvFile is an explicit .env path. It must exist when set.
	// When empty, DefaultEnvFile is read if present.
	EnvFile string
}

// DefaultPath returns ~/.webrelay/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load builds the effective configuration.
// Precedence, lowest first: defaults, TOML file, .env file, environment.
// Variables from the .env file override the process environment.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := newViper()

	path, err := resolveConfigFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		logger.Debug("config: read %s", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// BindEnv with explicit names wins over the prefixed form.
	for key, env := range credentialEnv {
		_ = v.BindEnv(key, env, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	return v
}

func resolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}

	path, err := DefaultPath()
	if err != nil {
		// No home directory means no default file.
		return "", nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("config file: %w", err)
	}
	return path, nil
}

func loadEnvFile(explicit string) error {
	if explicit != "" {
		if err := gotenv.OverLoad(explicit); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", explicit, err)
		}
		logger.Debug("config: loaded env file %s", explicit)
		return nil
	}

	if _, err := os.Stat(DefaultEnvFile); err != nil {
		return nil
	}
	if err := gotenv.OverLoad(DefaultEnvFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", DefaultEnvFile, err)
	}
	logger.Debug("config: loaded env file %s", DefaultEnvFile)
	return nil
}
