package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/khanglvm/mcp-scout/internal/config"
)

// NewConfigCmd creates the 'config' command with init and show subcommands.
func NewConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the mcp-scout configuration",
	}

	cmd.AddCommand(newConfigInitCmd(opts))
	cmd.AddCommand(newConfigShowCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *globalOptions) *cobra.Command {
	var (
		apiKey string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Write a configuration file with default settings. An existing file is kept
unless --force is given. --api-key updates the key in place. The previous
version is backed up to .bak.`,
		Example: `  mcp-scout config init --api-key exa_xxx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(opts)
			if err != nil {
				return err
			}

			cfg := config.NewConfig()
			existing, err := config.LoadFrom(path)
			switch {
			case err == nil:
				if !force && apiKey == "" {
					return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
				}
				cfg = existing
			case !isNotFound(err):
				return err
			}

			if apiKey != "" {
				cfg.Exa.APIKey = strings.TrimSpace(apiKey)
			}

			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration written to %s\n", path)
			if cfg.Exa.APIKey == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "  Set EXA_API_KEY or rerun with --api-key to enable searches.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Exa API key to store in the config file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  `Print the configuration after applying the file, .env and environment overrides. The API key is masked.`,
		Example: `  mcp-scout config show
  mcp-scout config show --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			shown := *cfg
			shown.Exa.APIKey = maskKey(cfg.Exa.APIKey)

			switch format {
			case "json":
				return printJSON(cmd.OutOrStdout(), shown)
			case "yaml":
				return printYAML(cmd.OutOrStdout(), shown)
			default:
				return fmt.Errorf("unsupported format: %s (use 'json' or 'yaml')", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "json", "Output format: json or yaml")
	return cmd
}

// printYAML renders v with the same keys as its JSON form.
func printYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func configPath(opts *globalOptions) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return config.GetDefaultConfigPath()
}

func isNotFound(err error) bool {
	var notFound *config.ConfigNotFoundError
	return errors.As(err, &notFound)
}

// maskKey keeps the last four characters of a secret.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
