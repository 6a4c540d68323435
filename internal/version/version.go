/*
Package version provides version information for mcp-scout.

Version values are set via ldflags during build:

	go build -ldflags "-X github.com/khanglvm/mcp-scout/internal/version.Version=v0.3.0 \
	  -X github.com/khanglvm/mcp-scout/internal/version.Commit=$(git rev-parse --short HEAD) \
	  -X github.com/khanglvm/mcp-scout/internal/version.Date=$(date -u +%Y-%m-%d)"

If not set via ldflags, defaults to "dev" build.
*/
package version

import "runtime"

// Version information (set via ldflags during build)
var (
	// Version is the current version (e.g., v0.3.0)
	Version = "dev"
	// Commit is the git commit hash (short form)
	Commit = "none"
	// Date is the build date in UTC (YYYY-MM-DD)
	Date = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
}

// Info returns the build information of the running binary.
func Info() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
}

// String formats the build information for --version output.
func (b BuildInfo) String() string {
	if b.Version == "dev" {
		return b.Version + " (development build)"
	}
	return b.Version + " (commit: " + b.Commit + ", built: " + b.Date + ")"
}

// GetVersion returns version information as a formatted string
func GetVersion() string {
	return Info().String()
}
