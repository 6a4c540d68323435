package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/mcp-scout/internal/recommend"
	"github.com/khanglvm/mcp-scout/internal/scout"
	"github.com/khanglvm/mcp-scout/internal/search"
)

// NewSearchCmd creates the 'search' command.
func NewSearchCmd(opts *globalOptions) *cobra.Command {
	var (
		maxResults int
		githubOnly bool
		broad      bool
		filter     string
		rerank     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <requirement>",
		Short: "Find MCP servers for a requirement",
		Long: `Search the web for MCP servers that fulfil a requirement and print them
ranked by confidence.

--filter keeps only results matching any of the given keywords. With --rerank
the matches are ordered by keyword relevance blended with confidence.`,
		Example: `  mcp-scout search "query a postgres database"
  mcp-scout search "send slack messages" --max 5 --github-only
  mcp-scout search "browser automation" --filter playwright --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			searchOpts := scout.SearchOptions{
				Requirement: strings.Join(args, " "),
				MaxResults:  maxResults,
				GitHubOnly:  githubOnly,
				Broad:       broad,
				Keywords:    filter,
				Rerank:      rerank,
			}

			resp, err := a.service.Search(ctx, searchOpts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, resp)
			}
			if len(resp.Scores) > 0 {
				printScored(out, resp.Scores)
				return nil
			}
			printSearch(out, resp)
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().BoolVar(&githubOnly, "github-only", false, "Only search GitHub and the MCP documentation sites")
	cmd.Flags().BoolVar(&broad, "broad", false, "Keep results that never mention MCP, at lower confidence")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Keep only results matching these keywords")
	cmd.Flags().BoolVar(&rerank, "rerank", false, "Order --filter matches by keyword relevance blended with confidence")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// NewCategorizeCmd creates the 'categorize' command.
func NewCategorizeCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "categorize <requirement>",
		Aliases: []string{"cat"},
		Short:   "Group MCP servers for a requirement by category",
		Example: `  mcp-scout categorize "team collaboration"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			resp, err := a.service.Categorize(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, resp)
			}
			printCategories(out, resp)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

// NewSimilarCmd creates the 'similar' command.
func NewSimilarCmd(opts *globalOptions) *cobra.Command {
	var (
		maxResults int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "similar <url>",
		Short:   "Find MCP servers similar to a reference server",
		Example: `  mcp-scout similar https://github.com/modelcontextprotocol/servers`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			resp, err := a.service.Similar(ctx, args[0], maxResults)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, resp)
			}
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Similar to %s (%d):", resp.ReferenceURL, len(resp.SimilarMCPs))))
			fmt.Fprintln(out)
			printRecommendations(out, resp.SimilarMCPs)
			printMessage(out, resp.Message)
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxResults, "max", "n", 5, "Maximum number of results")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

// NewDetailsCmd creates the 'details' command.
func NewDetailsCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "details <url>",
		Short:   "Describe an MCP server",
		Example: `  mcp-scout details https://github.com/modelcontextprotocol/servers`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			resp, err := a.service.Details(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, resp)
			}
			printDetails(out, resp)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

// NewAskCmd creates the 'ask' command.
func NewAskCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "ask <question>",
		Short:   "Ask a question about MCP servers",
		Example: `  mcp-scout ask "Which MCP servers can read Google Drive?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			resp, err := a.service.Ask(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, resp)
			}
			printAnswer(out, resp)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMessage(w io.Writer, msg string) {
	if msg != "" {
		fmt.Fprintln(w, msg)
	}
}

func printSearch(w io.Writer, resp *scout.SearchResponse) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("MCP servers for %q (%d):", resp.Query, resp.TotalFound)))
	fmt.Fprintln(w)
	printRecommendations(w, resp.Recommendations)
	printMessage(w, resp.Message)
}

func printRecommendations(w io.Writer, recs []recommend.Recommendation) {
	for i, r := range recs {
		printRecommendation(w, i+1, r)
	}
}

func printRecommendation(w io.Writer, n int, r recommend.Recommendation) {
	fmt.Fprintf(w, "%d. %s  %s\n", n, nameStyle.Render(r.Name), confidenceBadge(r.Confidence))
	if r.Description != "" {
		fmt.Fprintf(w, "    %s\n", r.Description)
	}
	fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("URL:       "), r.SourceURL)
	if r.HasRepository() && r.RepositoryURL != r.SourceURL {
		fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("Repository:"), r.RepositoryURL)
	}
	if len(r.Categories) > 0 {
		cats := make([]string, len(r.Categories))
		for i, c := range r.Categories {
			cats[i] = string(c)
		}
		fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("Categories:"), strings.Join(cats, ", "))
	}
	if len(r.Features) > 0 {
		fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("Features:  "), strings.Join(r.Features, ", "))
	}
	if r.InstallationNotes != "" {
		fmt.Fprintf(w, "    %s %s\n", labelStyle.Render("Install:   "), r.InstallationNotes)
	}
	fmt.Fprintln(w)
}

func printScored(w io.Writer, scored []search.ScoredRecommendation) {
	for i, s := range scored {
		fmt.Fprintf(w, "%d. %s  [fused %.2f, keyword %.2f]\n", i+1, s.Name, s.FusedScore, s.KeywordScore)
		fmt.Fprintf(w, "    URL:        %s\n\n", s.SourceURL)
	}
}

func printCategories(w io.Writer, resp *scout.CategorizeResponse) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("MCP servers for %q by category (%d):", resp.Requirement, resp.TotalMCPs)))
	fmt.Fprintln(w)
	for _, c := range resp.Categories {
		fmt.Fprintf(w, "%s (%d)\n", nameStyle.Render(string(c.Category)), c.Count)
		for _, r := range c.MCPs {
			fmt.Fprintf(w, "  • %s  %s  %s\n", r.Name, confidenceBadge(r.Confidence), r.SourceURL)
		}
		fmt.Fprintln(w)
	}
	printMessage(w, resp.Message)
}

func printDetails(w io.Writer, resp *scout.DetailsResponse) {
	fmt.Fprintln(w, headerStyle.Render("Details for "+resp.URL))
	fmt.Fprintln(w)
	if resp.Details != nil {
		printRecommendation(w, 1, *resp.Details)
	}
	if resp.InstallationInfo != "" {
		fmt.Fprintf(w, "Installation:\n  %s\n\n", resp.InstallationInfo)
	}
	if len(resp.SimilarMCPs) > 0 {
		fmt.Fprintf(w, "Similar servers:\n")
		for _, r := range resp.SimilarMCPs {
			fmt.Fprintf(w, "  • %s  %s  %s\n", r.Name, confidenceBadge(r.Confidence), r.SourceURL)
		}
		fmt.Fprintln(w)
	}
	if resp.SimilarError != "" {
		fmt.Fprintf(w, "Similar lookup failed: %s\n", resp.SimilarError)
	}
	printMessage(w, resp.Message)
}

func printAnswer(w io.Writer, resp *scout.AnswerResponse) {
	fmt.Fprintf(w, "%s\n\n", resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Fprintln(w, "Sources:")
		for _, s := range resp.Sources {
			fmt.Fprintf(w, "  • %s  %s\n", s.Title, s.URL)
		}
		fmt.Fprintln(w)
	}
	if len(resp.RelatedMCPs) > 0 {
		fmt.Fprintln(w, "Related MCP servers:")
		for _, r := range resp.RelatedMCPs {
			fmt.Fprintf(w, "  • %s  %s\n", r.Name, r.SourceURL)
		}
	}
}
