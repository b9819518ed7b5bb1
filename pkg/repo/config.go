package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the mutable repository record naming the source base path and
// the active branch.
type Config struct {
	BasePath string `json:"base_path"`
	Branch   string `json:"branch"`
}

// DefaultConfig returns the config a new repository starts with.
func DefaultConfig() *Config {
	return &Config{BasePath: ".", Branch: "main"}
}

func (r *Repo) configPath() string {
	return filepath.Join(r.ProseDir, "config")
}

// ReadConfig reads .prose/config. A missing config reads as DefaultConfig.
func (r *Repo) ReadConfig() (*Config, error) {
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("read config: unmarshal: %w", err)
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "."
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	return cfg, nil
}

// WriteConfig atomically writes .prose/config.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}
	if err := writeFileAtomic(r.configPath(), append(data, '\n')); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetBasePath stores the directory, relative to the repository root, that
// source paths given to Add are resolved against.
func (r *Repo) SetBasePath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("set base path: path is required")
	}
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return fmt.Errorf("set base path: %w", err)
		}
		path = rel
	}
	path = filepath.Clean(path)
	if path == ".." || strings.HasPrefix(path, ".."+string(filepath.Separator)) {
		return fmt.Errorf("set base path: %q is outside the repository", path)
	}
	info, err := os.Stat(filepath.Join(r.RootDir, path))
	if err != nil {
		return fmt.Errorf("set base path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("set base path: %q is not a directory", path)
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	cfg.BasePath = filepath.ToSlash(path)
	return r.WriteConfig(cfg)
}

// baseDir returns the absolute base directory named by cfg.
func (r *Repo) baseDir(cfg *Config) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(cfg.BasePath))
}
