/*
Package mcp implements the MCP server that exposes discovery tools.

The server exposes 5 tools:
  - search_mcps: Find MCP servers for a requirement
  - get_mcp_details: Describe one MCP server and its neighbours
  - find_similar_mcps: Find servers similar to a reference URL
  - ask_mcp_question: Answer a question about MCP servers with sources
  - categorize_mcps: Group search results by category

and one resource, mcp-search://help, with usage notes for the tools.
*/
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/khanglvm/mcp-scout/internal/config"
	"github.com/khanglvm/mcp-scout/internal/exa"
	"github.com/khanglvm/mcp-scout/internal/recommend"
	"github.com/khanglvm/mcp-scout/internal/scout"
	"github.com/khanglvm/mcp-scout/internal/version"
)

// ServerName is announced to MCP clients.
const ServerName = "mcp-scout"

// HelpURI is the URI of the help resource.
const HelpURI = "mcp-search://help"

// Discoverer runs discovery operations on behalf of the tools.
type Discoverer interface {
	Search(ctx context.Context, opts scout.SearchOptions) (*scout.SearchResponse, error)
	Details(ctx context.Context, url string) (*scout.DetailsResponse, error)
	Similar(ctx context.Context, url string, maxResults int) (*scout.SimilarResponse, error)
	Ask(ctx context.Context, question string) (*scout.AnswerResponse, error)
	Categorize(ctx context.Context, requirement string) (*scout.CategorizeResponse, error)
}

// Server represents the mcp-scout MCP server.
type Server struct {
	mcpServer  *server.MCPServer
	discoverer Discoverer
	logger     *zap.Logger
}

// NewServer creates a new MCP server backed by the given discoverer.
func NewServer(d Discoverer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		discoverer: d,
		logger:     logger,
	}

	s.mcpServer = server.NewMCPServer(
		ServerName,
		version.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
		server.WithRecovery(),
	)

	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the server on stdin/stdout until stdin is closed.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	searchTool := mcp.NewTool(scout.ToolSearch,
		mcp.WithDescription("Search for MCP servers that fulfil a requirement. Returns ranked recommendations with confidence scores, key features and installation notes."),
		mcp.WithString("requirement",
			mcp.Required(),
			mcp.Description("What the MCP server should do, e.g. 'query a PostgreSQL database'"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of recommendations (default: 10)"),
		),
		mcp.WithBoolean("include_github_only",
			mcp.Description("Only search GitHub and the official MCP documentation sites (default: false)"),
		),
		mcp.WithBoolean("broad",
			mcp.Description("Keep results that do not mention MCP, at lower confidence (default: false)"),
		),
		mcp.WithString("filter_keywords",
			mcp.Description("Keep only recommendations matching any of these keywords"),
		),
		mcp.WithBoolean("rerank",
			mcp.Description("Order filter_keywords matches by keyword relevance blended with confidence (default: false)"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearch)

	detailsTool := mcp.NewTool(scout.ToolDetails,
		mcp.WithDescription("Get details about a specific MCP server: description, features, installation information and similar servers."),
		mcp.WithString("mcp_url",
			mcp.Required(),
			mcp.Description("URL of the MCP server repository or documentation page"),
		),
	)
	s.mcpServer.AddTool(detailsTool, s.handleDetails)

	similarTool := mcp.NewTool(scout.ToolSimilar,
		mcp.WithDescription("Find MCP servers similar to a reference server."),
		mcp.WithString("reference_mcp_url",
			mcp.Required(),
			mcp.Description("URL of the reference MCP server"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of similar servers (default: 5)"),
		),
	)
	s.mcpServer.AddTool(similarTool, s.handleSimilar)

	askTool := mcp.NewTool(scout.ToolAsk,
		mcp.WithDescription("Ask a question about MCP servers and get a direct answer with sources."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question, e.g. 'Which MCP servers can read Google Drive?'"),
		),
	)
	s.mcpServer.AddTool(askTool, s.handleAsk)

	categorizeTool := mcp.NewTool(scout.ToolCategorize,
		mcp.WithDescription("Search for MCP servers and group them by category."),
		mcp.WithString("requirement",
			mcp.Required(),
			mcp.Description("What the MCP servers should do"),
		),
	)
	s.mcpServer.AddTool(categorizeTool, s.handleCategorize)
}

func (s *Server) registerResources() {
	help := mcp.NewResource(
		HelpURI,
		"MCP Scout Help",
		mcp.WithResourceDescription("How to use the MCP discovery tools"),
		mcp.WithMIMEType("text/markdown"),
	)

	s.mcpServer.AddResource(help, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      HelpURI,
				MIMEType: "text/markdown",
				Text:     helpText,
			},
		}, nil
	})
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requirement, err := request.RequireString("requirement")
	if err != nil {
		return mcp.NewToolResultError("requirement parameter is required"), nil
	}

	resp, err := s.discoverer.Search(ctx, scout.SearchOptions{
		Requirement: requirement,
		MaxResults:  request.GetInt("max_results", 0),
		GitHubOnly:  request.GetBool("include_github_only", false),
		Broad:       request.GetBool("broad", false),
		Keywords:    request.GetString("filter_keywords", ""),
		Rerank:      request.GetBool("rerank", false),
	})
	if err != nil {
		return s.toolError(scout.ToolSearch, err), nil
	}
	return s.toolResult(resp)
}

func (s *Server) handleDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("mcp_url")
	if err != nil {
		return mcp.NewToolResultError("mcp_url parameter is required"), nil
	}

	resp, err := s.discoverer.Details(ctx, url)
	if err != nil {
		return s.toolError(scout.ToolDetails, err), nil
	}
	return s.toolResult(resp)
}

func (s *Server) handleSimilar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("reference_mcp_url")
	if err != nil {
		return mcp.NewToolResultError("reference_mcp_url parameter is required"), nil
	}

	resp, err := s.discoverer.Similar(ctx, url, request.GetInt("max_results", 5))
	if err != nil {
		return s.toolError(scout.ToolSimilar, err), nil
	}
	return s.toolResult(resp)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	resp, err := s.discoverer.Ask(ctx, question)
	if err != nil {
		return s.toolError(scout.ToolAsk, err), nil
	}
	return s.toolResult(resp)
}

func (s *Server) handleCategorize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requirement, err := request.RequireString("requirement")
	if err != nil {
		return mcp.NewToolResultError("requirement parameter is required"), nil
	}

	resp, err := s.discoverer.Categorize(ctx, requirement)
	if err != nil {
		return s.toolError(scout.ToolCategorize, err), nil
	}
	return s.toolResult(resp)
}

// toolResult encodes a response as indented JSON text.
func (s *Server) toolResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError converts a discovery failure into a tool error result. Tool
// failures are reported to the client, never as protocol errors.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Debug("tool call failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError(ErrorMessage(err))
}

// ErrorMessage renders err for a human reader with a hint where one helps.
func ErrorMessage(err error) string {
	var (
		verr     *recommend.ValidationError
		authErr  *exa.AuthError
		keyErr   *config.MissingAPIKeyError
		rateErr  *exa.RateLimitError
		netErr   *exa.TransientNetworkError
		apiErr   *exa.APIError
		emptyErr *exa.EmptyResultError
	)

	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &keyErr):
		return keyErr.Error()
	case errors.As(err, &authErr) && authErr.StatusCode == 0:
		return "EXA_API_KEY is not set. Export it or add it to .env, then restart the server."
	case errors.As(err, &authErr):
		return fmt.Sprintf("search provider rejected the API key (HTTP %d). Set a valid EXA_API_KEY and restart the server.", authErr.StatusCode)
	case errors.As(err, &rateErr):
		if rateErr.RetryAfter > 0 {
			return fmt.Sprintf("search provider rate limit reached, retry in %s", rateErr.RetryAfter)
		}
		return "search provider rate limit reached, retry later"
	case errors.As(err, &netErr):
		return fmt.Sprintf("search provider unavailable: %v", netErr)
	case errors.As(err, &emptyErr):
		return "search provider returned no results"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("search provider error: %v", apiErr)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("request cancelled: %v", err)
	default:
		return err.Error()
	}
}
