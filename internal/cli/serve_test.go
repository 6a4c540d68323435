package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewServeCmd(t *testing.T) {
	cmd := NewServeCmd(&globalOptions{})

	if cmd == nil {
		t.Fatal("NewServeCmd() returned nil")
	}

	if cmd.Use != "serve" {
		t.Errorf("Expected Use='serve', got %q", cmd.Use)
	}

	for _, flag := range []string{"transport", "addr"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Flag %q not registered", flag)
		}
	}
}

func TestServeCommandHelp(t *testing.T) {
	cmd := NewServeCmd(&globalOptions{})
	cmd.SetArgs([]string{"--help"})

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() with --help failed: %v", err)
	}

	output := buf.String()
	for _, expected := range []string{"serve", "MCP server", "search_mcps", "categorize_mcps", "/mcp"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Help output missing %q", expected)
		}
	}
}

func TestServeRejectsUnknownTransport(t *testing.T) {
	isolate(t)

	_, err := execute(t, "serve", "--transport", "grpc")
	if err == nil {
		t.Fatal("Expected error for unknown transport")
	}
	if !strings.Contains(err.Error(), "unsupported transport") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestResolveTransport(t *testing.T) {
	tests := []struct {
		flag, configured, want string
	}{
		{"", "HTTP", "http"},
		{"", "stdio", "stdio"},
		{"Stdio", "http", "stdio"},
		{" HTTP ", "", "http"},
	}
	for _, tt := range tests {
		if got := resolveTransport(tt.flag, tt.configured); got != tt.want {
			t.Errorf("resolveTransport(%q, %q) = %q, want %q", tt.flag, tt.configured, got, tt.want)
		}
	}
}
