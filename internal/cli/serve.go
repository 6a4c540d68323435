package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanglvm/mcp-scout/internal/config"
	"github.com/khanglvm/mcp-scout/internal/mcp"
)

// NewServeCmd creates the 'serve' command for running the MCP server.
func NewServeCmd(opts *globalOptions) *cobra.Command {
	var transport, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Start the mcp-scout MCP server.

The server exposes 5 tools to AI clients:
  • search_mcps       - Find MCP servers for a requirement
  • get_mcp_details   - Describe one MCP server
  • find_similar_mcps - Find servers similar to a reference
  • ask_mcp_question  - Ask a question about MCP servers
  • categorize_mcps   - Group results by category

With --transport http the MCP endpoint is served at /mcp, next to /health
and /metrics.`,
		Example: `  # Run over stdio
  mcp-scout serve

  # Add to Claude Code
  claude mcp add mcp-scout -- mcp-scout serve

  # Serve streamable HTTP
  mcp-scout serve --transport http --addr 127.0.0.1:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, transport, addr)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "", "Transport: stdio or http (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address for the http transport (default from config)")

	return cmd
}

// resolveTransport picks the --transport flag over the configured value.
func resolveTransport(flag, configured string) string {
	if t := config.NormalizeTransport(flag); t != "" {
		return t
	}
	return config.NormalizeTransport(configured)
}

// runServe starts the MCP server and shuts down on SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, opts *globalOptions, transport, addr string) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	transport = resolveTransport(transport, a.cfg.Server.Transport)
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	a.pruneHistory()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(a.service, a.logger)

	switch transport {
	case config.TransportStdio:
		errChan := make(chan error, 1)
		go func() {
			errChan <- server.ServeStdio()
		}()

		select {
		case <-ctx.Done():
			a.logger.Info("received shutdown signal")
			return nil
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		}

	case config.TransportHTTP:
		return server.ListenAndServe(ctx, addr)

	default:
		return fmt.Errorf("unsupported transport: %s (use 'stdio' or 'http')", transport)
	}
}

// pruneHistory applies the retention policy once at startup.
func (a *app) pruneHistory() {
	if a.store == nil || a.cfg.History.RetentionDays <= 0 {
		return
	}
	if err := a.store.Init(); err != nil {
		return
	}
	retention := time.Duration(a.cfg.History.RetentionDays) * 24 * time.Hour
	deleted, err := a.store.Cleanup(retention)
	if err != nil {
		a.logger.Warn("history cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		a.logger.Info("pruned search history", zap.Int64("deleted", deleted))
	}
}

// signalContext is used by one-shot commands so Ctrl-C cancels provider calls.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
