package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// configFileMode keeps the file private; it may hold the Exa API key.
const configFileMode = 0600

// Save validates cfg and writes it to path. An existing file is copied to
// path.bak first, and the new content replaces it atomically.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := validateJSON(data); err != nil {
		return &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Check the scoring weights and limits and try again",
		}
	}

	if err := backupConfig(path); err != nil {
		return permissionOr(path, fmt.Errorf("failed to back up config: %w", err))
	}
	if err := atomicWrite(path, append(data, '\n')); err != nil {
		return permissionOr(path, err)
	}
	return nil
}

// backupConfig copies an existing config to path.bak.
func backupConfig(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path+".bak", data, configFileMode)
}

// validateJSON round-trips the encoded config and validates the result.
func validateJSON(data []byte) error {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// atomicWrite writes data to a temp file in the target directory, syncs it
// and renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, configFileMode); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// permissionOr turns permission failures into a *PermissionError with a fix.
func permissionOr(path string, err error) error {
	if !errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("failed to write config: %w", err)
	}
	target := path
	if _, statErr := os.Stat(path); statErr != nil {
		target = filepath.Dir(path)
	}
	return &PermissionError{
		Path:    target,
		Op:      "write",
		Fix:     getWritePermissionFix(target),
		Details: err.Error(),
	}
}

func getWritePermissionFix(path string) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("Right-click %s → Properties → Security → Grant 'Write' permission", path)
	}
	return fmt.Sprintf("Run: chmod u+w %s", path)
}
