package main

import (
	"os"
	"path/filepath"
	"strings"
)

// expandHome resolves a leading ~ in paths typed into the file prompt.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
