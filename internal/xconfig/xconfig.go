// Package xconfig loads JSON configuration files into caller-supplied
// struct types.
package xconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads the JSON file at path and decodes it into a new T.
func Load[T any](path string) (*T, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %q: %w", path, err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("opening config file %q: %w", absPath, err)
	}
	defer file.Close()

	var cfg T
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %q: %w", absPath, err)
	}
	return &cfg, nil
}
