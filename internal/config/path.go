// Package config resolves application settings for the credit risk pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveStorePath turns a configured store location into an absolute
// path. A leading ~ is the home directory, $VARS are expanded, and
// relative paths are taken from the working directory. An empty path
// stays empty.
func ResolveStorePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}

	path = os.ExpandEnv(path)
	if path == "" {
		return "", nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve store path %q: %w", path, err)
	}
	return abs, nil
}
