package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// config holds the file-level settings. Flags override these.
type config struct {
	Root       string        `yaml:"root"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheSize  int           `yaml:"cache_size"`
	FetchCache string        `yaml:"fetch_cache"`
}

// loadConfig reads the YAML config at path, or the default location when
// path is empty. A missing file at the default location is not an error.
func loadConfig(path string) (config, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return config{}, nil
		}
		path = filepath.Join(home, ".config", "nrl", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config{}, nil
		}
		return config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var c config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}
