package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MCPSCOUT"

// Load reads the configuration from the default path. A missing file is
// not an error: defaults, .env and the environment still apply.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return load("")
	}
	return LoadFrom(configPath)
}

// LoadFrom reads config from an explicit path, which must exist.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'mcp-scout config init' to create configuration",
			}
		}
		return nil, fmt.Errorf("failed to access config: %w", err)
	}

	// Check read permissions
	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	f.Close()

	return load(path)
}

func load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v, NewConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("exa.apiKey", EnvPrefix+"_EXA_APIKEY", "EXA_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind EXA_API_KEY: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, &InvalidConfigError{
				Path:    path,
				Message: fmt.Sprintf("JSON parse error: %v", err),
				Hint:    "Restore from .bak file if available",
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("failed to decode config: %v", err),
		}
	}
	cfg.Exa.APIKey = strings.TrimSpace(cfg.Exa.APIKey)
	cfg.Server.Transport = NormalizeTransport(cfg.Server.Transport)

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Fix the value or remove it to use the default",
		}
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("exa.apiKey", d.Exa.APIKey)
	v.SetDefault("exa.baseUrl", d.Exa.BaseURL)
	v.SetDefault("exa.timeoutSeconds", d.Exa.TimeoutSeconds)
	v.SetDefault("exa.maxRetries", d.Exa.MaxRetries)

	v.SetDefault("search.defaultMaxResults", d.Search.DefaultMaxResults)
	v.SetDefault("search.maxResultsLimit", d.Search.MaxResultsLimit)
	v.SetDefault("search.categorizeMaxResults", d.Search.CategorizeMaxResults)

	v.SetDefault("scoring.providerWeight", d.Scoring.ProviderWeight)
	v.SetDefault("scoring.indicatorWeight", d.Scoring.IndicatorWeight)
	v.SetDefault("scoring.credibilityWeight", d.Scoring.CredibilityWeight)
	v.SetDefault("scoring.indicatorCap", d.Scoring.IndicatorCap)
	v.SetDefault("scoring.codeHostBonus", d.Scoring.CodeHostBonus)
	v.SetDefault("scoring.docsBonus", d.Scoring.DocsBonus)
	v.SetDefault("scoring.popularityBonus", d.Scoring.PopularityBonus)
	v.SetDefault("scoring.broadModePenalty", d.Scoring.BroadModePenalty)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.retentionDays", d.History.RetentionDays)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("server.transport", d.Server.Transport)
	v.SetDefault("server.addr", d.Server.Addr)
}

// loadEnvFiles loads .env from the working directory and from
// ~/.mcp-scout. Variables already in the environment win.
func loadEnvFiles() {
	paths := []string{".env"}
	if dir, err := GetDataDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default: // unix-like
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file ownership and permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return "" // Not applicable on Windows
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
