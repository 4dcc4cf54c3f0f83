package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory and clears provider variables
// so the developer's real configuration never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{
		"EXA_API_KEY", "FIRECRAWL_API_KEY",
		"WEBRELAY_EXA_API_KEY", "WEBRELAY_FIRECRAWL_API_KEY",
		"WEBRELAY_HTTP_TIMEOUT", "WEBRELAY_SEARCH_DEFAULT_NUM_RESULTS",
		"WEBRELAY_SEARCH_INCLUDE_DOMAINS", "WEBRELAY_EXA_ENABLED",
	} {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(Options{})

	require.NoError(t, err)
	want := Default()
	assert.Equal(t, want.Exa, cfg.Exa)
	assert.Equal(t, want.Firecrawl, cfg.Firecrawl)
	assert.Equal(t, want.Search.DefaultNumResults, cfg.Search.DefaultNumResults)
	assert.Empty(t, cfg.Search.IncludeDomains)
	assert.Equal(t, want.Search.SummaryQuery, cfg.Search.SummaryQuery)
	assert.Equal(t, want.HTTP, cfg.HTTP)
	assert.Equal(t, want.Retry, cfg.Retry)
	assert.Equal(t, want.Dispatcher, cfg.Dispatcher)
	assert.Equal(t, want.Extract, cfg.Extract)
	assert.Empty(t, cfg.Path)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "config.toml", `
[exa]
api_key = "from-file"
enabled = false

[search]
default_num_results = 8
include_domains = ["go.dev", "pkg.go.dev"]

[http]
timeout = "10s"

[dispatcher]
strict_arguments = true
`)

	cfg, err := Load(Options{ConfigFile: path})

	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "from-file", cfg.Exa.APIKey)
	assert.False(t, cfg.Exa.Enabled)
	assert.Equal(t, 8, cfg.Search.DefaultNumResults)
	assert.Equal(t, []string{"go.dev", "pkg.go.dev"}, cfg.Search.IncludeDomains)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.True(t, cfg.Dispatcher.StrictArguments)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestLoad_DefaultPathIsRead(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".webrelay")
	require.NoError(t, os.MkdirAll(dir, 0700))
	path := writeFile(t, dir, "config.toml", "[retry]\nmax_attempts = 5\n")

	cfg, err := Load(Options{})

	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.toml")})
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "config.toml", "[exa\napi_key=")

	_, err := Load(Options{ConfigFile: path})
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "config.toml", "[exa]\napi_key = \"from-file\"\n")
	t.Setenv("EXA_API_KEY", "from-env")
	t.Setenv("WEBRELAY_FIRECRAWL_API_KEY", "prefixed")
	t.Setenv("WEBRELAY_HTTP_TIMEOUT", "45s")
	t.Setenv("WEBRELAY_SEARCH_DEFAULT_NUM_RESULTS", "9")

	cfg, err := Load(Options{ConfigFile: path})

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Exa.APIKey)
	assert.Equal(t, "prefixed", cfg.Firecrawl.APIKey)
	assert.Equal(t, 45*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 9, cfg.Search.DefaultNumResults)
}

func TestLoad_EnvFileOverridesProcessEnv(t *testing.T) {
	isolate(t)
	t.Setenv("EXA_API_KEY", "process")
	envFile := writeFile(t, t.TempDir(), "test.env", "EXA_API_KEY=dotenv\nFIRECRAWL_API_KEY=fc-dotenv\n")

	cfg, err := Load(Options{EnvFile: envFile})

	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.Exa.APIKey)
	assert.Equal(t, "fc-dotenv", cfg.Firecrawl.APIKey)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	isolate(t)
	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "config.toml", "[search]\ndefault_num_results = 0\n[retry]\nmax_attempts = 0\n")

	_, err := Load(Options{ConfigFile: path})

	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "search.default_num_results")
	assert.Contains(t, err.Error(), "retry.max_attempts")
}

func TestDefault_Validates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestDefaultPath(t *testing.T) {
	home := isolate(t)
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".webrelay", "config.toml"), path)
}
