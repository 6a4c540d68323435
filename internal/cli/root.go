/*
Package cli implements the mcp-scout commands.

Every command that talks to the search provider builds an app: the loaded
configuration, a logger, the Exa client, search history and the discovery
service. Output goes to the command's writer so commands can be tested.
*/
package cli

import (
	"github.com/spf13/cobra"

	"github.com/khanglvm/mcp-scout/internal/version"
)

// globalOptions are the persistent flags shared by all commands.
type globalOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd creates the mcp-scout root command with all subcommands.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "mcp-scout",
		Short: "Discover MCP servers for a task",
		Long: `mcp-scout finds Model Context Protocol servers that fulfil a requirement.

It searches the web through the Exa API, scores every hit for how likely it is
to describe an MCP server, merges duplicates and groups results by category.
Run it as an MCP server for AI clients or use the commands directly:
  • search     - Find MCP servers for a requirement
  • details    - Describe one MCP server
  • similar    - Find servers similar to a reference
  • ask        - Ask a question about MCP servers
  • categorize - Group results by category`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.mcp-scout.json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(NewServeCmd(opts))
	rootCmd.AddCommand(NewSearchCmd(opts))
	rootCmd.AddCommand(NewCategorizeCmd(opts))
	rootCmd.AddCommand(NewSimilarCmd(opts))
	rootCmd.AddCommand(NewDetailsCmd(opts))
	rootCmd.AddCommand(NewAskCmd(opts))
	rootCmd.AddCommand(NewHistoryCmd(opts))
	rootCmd.AddCommand(NewConfigCmd(opts))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
