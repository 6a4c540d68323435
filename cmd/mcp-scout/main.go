/*
Package main is the entry point for the mcp-scout CLI.

mcp-scout discovers Model Context Protocol servers that fulfil a requirement.
It runs as an MCP server for AI clients or as a command line tool.

Usage:
  mcp-scout [command]

Available Commands:
  serve       Run the MCP server (stdio or HTTP)
  search      Find MCP servers for a requirement
  categorize  Group MCP servers for a requirement by category
  similar     Find MCP servers similar to a reference server
  details     Describe an MCP server
  ask         Ask a question about MCP servers
  history     Inspect local search history
  config      Manage the mcp-scout configuration
  version     Show version information

Examples:
  # Store an Exa API key
  mcp-scout config init --api-key exa_xxx

  # Run as MCP server
  mcp-scout serve

  # Search from the terminal
  mcp-scout search "query a postgres database"
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/mcp-scout/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
