package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL     = "http://127.0.0.1:8000"
	DefaultTimeoutSecs = 120
)

// BackendConfig points the client at the document Q&A service.
type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the per-request timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// ExportConfig controls where answer exports are written.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig controls the log file. The TUI owns the terminal, so logs never go to stdout.
type LogConfig struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// UIConfig tunes the terminal interface.
type UIConfig struct {
	AllowedTypes []string `yaml:"allowed_types"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Backend BackendConfig `yaml:"backend"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
	UI      UIConfig      `yaml:"ui"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/narraive/config.yaml.
// Unlike Init it never writes anything.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := UserConfigPath()
	if err != nil {
		return Default(), "", nil
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Init writes the defaults to path unless a file already exists there.
func Init(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	return true, Save(path, Default())
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// UserConfigPath is ~/.config/narraive/config.yaml.
func UserConfigPath() (string, error) {
	dir, err := userDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func userDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "narraive"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = DefaultBaseURL
	}
	if cfg.Backend.TimeoutSecs <= 0 {
		cfg.Backend.TimeoutSecs = DefaultTimeoutSecs
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "."
	}
	if cfg.Log.File == "" {
		if dir, err := userDir(); err == nil {
			cfg.Log.File = filepath.Join(dir, "narraive.log")
		}
	}
	if len(cfg.UI.AllowedTypes) == 0 {
		cfg.UI.AllowedTypes = []string{".txt", ".pdf"}
	}
}
