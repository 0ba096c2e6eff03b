//go:build windows

package log

import (
	"os"
	"path/filepath"
)

// defaultDir is %LOCALAPPDATA%\voxhook\logs.
func defaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName, "logs"), nil
}
