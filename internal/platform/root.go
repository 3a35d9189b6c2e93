package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/YaroslavMizgirev/shelf/internal/config"
)

// FindRoot looks upwards from startDir for a library root.
// Indicators are: .shelf directory, .git directory, or shelf.yaml file.
// If none is found it returns an error.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, DefaultSystemDir) || hasFile(dir, ".git") || hasFile(dir, config.FileName) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}
