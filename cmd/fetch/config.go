package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/fetcher/download"
)

// Config defines configuration for the fetch CLI.
type Config struct {
	Transfer         download.TransferConfig `yaml:"transfer"`
	OutputDir        string                  `yaml:"output_dir" validate:"required"`
	Concurrency      int                     `yaml:"concurrency" validate:"min=0"`
	Timeout          time.Duration           `yaml:"timeout" validate:"min=0"`
	UserAgent        string                  `yaml:"user_agent"`
	Headers          map[string]string       `yaml:"headers"`
	ProgressInterval time.Duration           `yaml:"progress_interval"`
	LogLevel         string                  `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Transfer:         download.DefaultTransferConfig(),
		OutputDir:        ".",
		Concurrency:      4,
		ProgressInterval: time.Second,
		LogLevel:         "info",
	}
}

// DefaultPath is where the config file is looked up when -config is not given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "fetcher", "config.yaml")
}

// Load reads the YAML file at path over the defaults. When path is empty
// DefaultPath is tried and a missing file there is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the config against its declared tags.
func (c Config) Validate() error {
	return download.Validate(c)
}
