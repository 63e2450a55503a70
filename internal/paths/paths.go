// Package paths resolves user-supplied directory strings into absolute paths.
//
// DESIGN: Small, dependency-free helper shared by config and capture.
// Supports "~" and "~/dir" home expansion; "~user" forms are rejected
// because they require passwd lookups we don't want to depend on.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandDir expands a user-supplied directory string into an absolute path.
// Returns an error on malformed input; callers are expected to fall back to
// a temp-directory location.
func ExpandDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("empty directory path")
	}

	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve home directory: %w", err)
		}
		if dir == "~" {
			dir = home
		} else {
			dir = filepath.Join(home, dir[2:])
		}
	} else if strings.HasPrefix(dir, "~") {
		// "~user" expansion needs passwd lookups - not supported
		return "", fmt.Errorf("unsupported home-relative path: %s", dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path '%s': %w", dir, err)
	}
	return abs, nil
}
