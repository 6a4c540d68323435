package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanglvm/mcp-scout/internal/storage"
)

// NewHistoryCmd creates the 'history' command with stats and prune subcommands.
func NewHistoryCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect local search history",
		Long: `Search history is kept in ~/.mcp-scout/history.db. Only a hash of each
query is stored, together with the tool, result count and duration.`,
	}

	cmd.AddCommand(newHistoryStatsCmd(opts))
	cmd.AddCommand(newHistoryPruneCmd(opts))
	return cmd
}

func newHistoryStatsCmd(opts *globalOptions) *cobra.Command {
	var (
		days       int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics",
		Example: `  mcp-scout history stats
  mcp-scout history stats --days 7 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openHistory(opts)
			if err != nil {
				return err
			}
			defer closeStore()

			var since time.Time
			if days > 0 {
				since = time.Now().Add(-time.Duration(days) * 24 * time.Hour)
			}
			stats, err := store.Stats(since)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, stats)
			}
			printStats(out, stats, days)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 30, "Only include the last N days (0 for all)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func newHistoryPruneCmd(opts *globalOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:     "prune",
		Short:   "Delete history older than N days",
		Example: `  mcp-scout history prune --days 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			store, closeStore, err := openHistory(opts)
			if err != nil {
				return err
			}
			defer closeStore()

			deleted, err := store.Cleanup(time.Duration(days) * 24 * time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d history records older than %d days\n", deleted, days)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 90, "Keep the last N days")
	return cmd
}

// openHistory opens the history database without building a provider, so
// history commands work without an API key.
func openHistory(opts *globalOptions) (*storage.SQLiteStorage, func(), error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(opts, cfg)

	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewStorage(path, log)
	if err := store.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to open search history: %w", err)
	}

	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close history database", zap.Error(err))
		}
		_ = log.Sync()
	}, nil
}

func printStats(w io.Writer, stats *storage.HistoryStats, days int) {
	period := "all time"
	if days > 0 {
		period = fmt.Sprintf("last %d days", days)
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Search history (%s):", period)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Searches:       %d\n", stats.TotalSearches)
	fmt.Fprintf(w, "  Unique queries: %d\n\n", stats.UniqueQueries)

	if len(stats.Tools) == 0 {
		fmt.Fprintln(w, "No searches recorded.")
		return
	}

	for _, t := range stats.Tools {
		fmt.Fprintf(w, "  %s\n", nameStyle.Render(t.Tool))
		fmt.Fprintf(w, "    Calls:        %d (%d empty, %d errors)\n", t.Searches, t.Empty, t.Errors)
		fmt.Fprintf(w, "    Avg results:  %.1f\n", t.AvgResults)
		fmt.Fprintf(w, "    Avg duration: %.0fms\n", t.AvgDurationMs)
		if !t.LastUsed.IsZero() {
			fmt.Fprintf(w, "    Last used:    %s\n", t.LastUsed.Local().Format(time.RFC3339))
		}
		fmt.Fprintln(w)
	}
}
