package config

import (
	"fmt"
	"strings"
)

// hinted renders a headline, optional detail lines and a trailing hint.
func hinted(headline, hint string, details ...string) string {
	var b strings.Builder
	b.WriteString(headline)
	for _, d := range details {
		if d != "" {
			b.WriteString("\n")
			b.WriteString(d)
		}
	}
	if hint != "" {
		b.WriteString("\n\n💡 ")
		b.WriteString(hint)
	}
	return b.String()
}

// PermissionError reports a config file or directory the process cannot
// read or write.
type PermissionError struct {
	Path    string
	Op      string // read or write
	Fix     string
	Details string
}

func (e *PermissionError) Error() string {
	return hinted(fmt.Sprintf("cannot %s config at %s: permission denied", e.Op, e.Path), e.Fix, e.Details)
}

// ConfigNotFoundError is returned by an explicit load of a missing file.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return hinted("no config file at "+e.Path, e.Hint)
}

// InvalidConfigError covers unparsable JSON and values that fail Validate.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
}

func (e *InvalidConfigError) Error() string {
	return hinted("invalid config "+e.Path, e.Hint, e.Message)
}

// MissingAPIKeyError is returned when a command needs the Exa API key and
// none is configured.
type MissingAPIKeyError struct{}

func (e *MissingAPIKeyError) Error() string {
	return hinted("EXA_API_KEY is not set",
		"Get a key at https://dashboard.exa.ai/ and export EXA_API_KEY, "+
			"add it to a .env file, or run 'mcp-scout config init --api-key <key>'")
}
