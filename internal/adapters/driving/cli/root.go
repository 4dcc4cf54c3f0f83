// Package cli provides the webrelay command-line interface.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/webrelay/internal/adapters/driven/config"
	"github.com/custodia-labs/webrelay/internal/app"
	"github.com/custodia-labs/webrelay/internal/core/ports/driving"
	"github.com/custodia-labs/webrelay/internal/logger"
)

var (
	version = "dev"

	verbose    bool
	configFile string
	envFile    string
)

// loadConfig reads the effective configuration. Replaced in tests.
var loadConfig = func() (*config.Config, error) {
	return config.Load(config.Options{
		ConfigFile: configFile,
		EnvFile:    envFile,
	})
}

// newDispatcher builds the tool dispatcher from configuration. Replaced in tests.
var newDispatcher = func() (driving.ToolDispatcher, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	svc, err := app.Build(cfg, version)
	if err != nil {
		return nil, err
	}
	return svc.Dispatcher, nil
}

var rootCmd = &cobra.Command{
	Use:   "webrelay",
	Short: "Web search and crawling tools for AI assistants",
	Long: `webrelay exposes web search (Exa) and crawling (Firecrawl) to AI assistants
over the Model Context Protocol. Every tool answers with markdown text.

Credentials are read from EXA_API_KEY and FIRECRAWL_API_KEY, a .env file in the
working directory, or ~/.webrelay/config.toml.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	// cobra's Print helpers fall back to stderr; command output belongs on stdout.
	rootCmd.SetOut(os.Stdout)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.webrelay/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default ./.env if present)")
}

// SetVersion sets the version reported by the CLI and the MCP server.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
