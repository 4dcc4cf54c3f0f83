package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/webrelay/internal/adapters/driven/config"
)

var (
	configShowReveal bool
	configInitForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Show, inspect and initialise the webrelay configuration.

Settings are resolved in this order (highest first): environment variables
(WEBRELAY_<SECTION>_<KEY>, plus EXA_API_KEY and FIRECRAWL_API_KEY), the
.env file, the config file, and built-in defaults.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a single configuration value",
	Long: `Print a single configuration value by its dotted key, for example
http.timeout or search.default_num_results.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file populated with the defaults to --config,
or ~/.webrelay/config.toml when --config is not given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowReveal, "reveal", false, "print API keys in clear text")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := config.Render(cfg, !configShowReveal)
	if err != nil {
		return err
	}

	if cfg.Path != "" {
		cmd.Printf("# %s\n", cfg.Path)
	}
	cmd.Print(string(data))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := strings.ToLower(strings.TrimSpace(args[0]))
	value, ok := config.Flatten(cfg, true)[key]
	if !ok {
		return fmt.Errorf("unknown key %q (valid keys: %s)", args[0], strings.Join(config.Keys(), ", "))
	}

	if list, ok := value.([]string); ok {
		cmd.Println(strings.Join(list, ","))
		return nil
	}
	cmd.Println(value)
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := config.WriteDefault(path, configInitForce); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%w: %s (use --force to overwrite)", err, path)
		}
		return err
	}

	cmd.Printf("Wrote %s\n", path)
	return nil
}
