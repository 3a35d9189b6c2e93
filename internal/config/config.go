// Package config resolves shelf settings from shelf.yaml, the environment
// and a .env file. Command line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the optional configuration file at the library root.
const FileName = "shelf.yaml"

// Environment variables read by Load.
const (
	EnvDir     = "SHELF_DIR"
	EnvCatalog = "SHELF_CATALOG"
	EnvAdapter = "SHELF_ADAPTER"
	EnvStrict  = "SHELF_STRICT"
)

// Config holds the resolved settings. Zero values mean "use the default".
type Config struct {
	Dir        string `yaml:"-"`
	Catalog    string `yaml:"catalog"`
	Adapter    string `yaml:"adapter"`
	Strict     bool   `yaml:"strict"`
	Versioning *bool  `yaml:"versioning"`
	ReadOnly   bool   `yaml:"read_only"`
	SystemDir  string `yaml:"system_dir"`
}

// LoadEnv loads .env files into the process environment. Missing files are
// ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load resolves the library directory from dir or SHELF_DIR, reads its
// shelf.yaml when present and applies the remaining environment overrides.
func Load(dir string) (Config, error) {
	return load(dir, os.Getenv)
}

func load(dir string, getenv func(string) string) (Config, error) {
	if dir == "" {
		dir = getenv(EnvDir)
	}
	if dir == "" {
		dir = "."
	}

	cfg, err := ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return Config{}, err
	}
	cfg.Dir = dir

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadFile parses a shelf.yaml file. A missing file yields an empty Config.
func ReadFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvCatalog); v != "" {
		cfg.Catalog = v
	}
	if v := getenv(EnvAdapter); v != "" {
		cfg.Adapter = v
	}
	if v := getenv(EnvStrict); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStrict, err)
		}
		cfg.Strict = strict
	}
	return nil
}
