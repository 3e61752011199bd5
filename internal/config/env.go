package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles returns the env files consulted for API keys, in order.
func DefaultEnvFiles() []string {
	files := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".voice-typer.env"))
	}
	return files
}

// LoadEnvFiles loads every existing file into the process environment.
// Variables that are already set are never overridden. It returns the
// files that were loaded.
func LoadEnvFiles(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("env file %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("loading env file %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// Secret returns value when set, otherwise the named environment variable.
func Secret(value, envVar string) string {
	if value != "" {
		return value
	}
	return os.Getenv(envVar)
}
