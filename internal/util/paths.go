// Package util holds small helpers shared across packages.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading tilde to the user home directory and cleans
// the result. Environment references are not expanded here; the config
// loader owns ${VAR} interpolation with its own semantics.
//
// Examples:
//   - "~"                    -> "/home/user"
//   - "~/plans"              -> "/home/user/plans"
//   - "~/.devstate/plans.db" -> "/home/user/.devstate/plans.db"
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		if path == "~" {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[2:])
	}

	return filepath.Clean(path), nil
}
