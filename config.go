package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"intbridge/logging"
	"intbridge/platform"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	REPL     REPLConfig     `json:"repl" yaml:"repl"`
	Platform PlatformConfig `json:"platform" yaml:"platform"`
	Lua      LuaConfig      `json:"lua" yaml:"lua"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// REPLConfig contains REPL configuration
type REPLConfig struct {
	Prompt       string `json:"prompt" yaml:"prompt"`
	HistorySize  int    `json:"history_size" yaml:"history_size"`
	HistoryFile  string `json:"history_file" yaml:"history_file"`
	ShowWelcome  bool   `json:"show_welcome" yaml:"show_welcome"`
	EnableColors bool   `json:"enable_colors" yaml:"enable_colors"`
}

// PlatformConfig selects the C data model. "auto" detects it from the
// running binary.
type PlatformConfig struct {
	Profile string `json:"profile" yaml:"profile"`
}

// LuaConfig contains scripting configuration
type LuaConfig struct {
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoggingConfig contains logging configuration. An empty File logs to
// stderr; MaxSizeMB > 0 turns on rotation.
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	Compress   bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:       "intbridge> ",
			HistorySize:  1000,
			HistoryFile:  "/tmp/intbridge_history",
			ShowWelcome:  true,
			EnableColors: true,
		},
		Platform: PlatformConfig{
			Profile: "auto",
		},
		Lua: LuaConfig{
			TimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Level:  "warning",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	path = expandHome(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %v", err)
		}
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %v", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves configuration to a file, as JSON for a .json path and
// YAML otherwise
func SaveConfig(config *Config, path string) error {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	default:
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}
	return nil
}

// Validate rejects values that would fail later at startup
func (c *Config) Validate() error {
	if _, err := platform.ParseProfile(c.Platform.Profile); err != nil {
		return fmt.Errorf("invalid platform profile: %v", err)
	}
	if _, err := logging.NewFormatter(c.Logging.Format); err != nil {
		return fmt.Errorf("invalid logging format: %v", err)
	}
	if c.Lua.TimeoutSeconds < 0 {
		return fmt.Errorf("lua timeout must not be negative")
	}
	return nil
}

// LuaTimeout returns the per-evaluation Lua bound
func (c *Config) LuaTimeout() time.Duration {
	return time.Duration(c.Lua.TimeoutSeconds) * time.Second
}

// NewLogger builds the logger described by the logging section. The
// returned logger must be closed to flush file output.
func (c *Config) NewLogger() (*logging.DefaultLogger, error) {
	formatter, err := logging.NewFormatter(c.Logging.Format)
	if err != nil {
		return nil, err
	}

	var writer logging.Writer
	switch {
	case c.Logging.File == "":
		writer = logging.NewConsoleWriterTo(os.Stderr)
	case c.Logging.MaxSizeMB > 0:
		writer, err = logging.NewRotatingFileWriter(expandHome(c.Logging.File),
			int64(c.Logging.MaxSizeMB)<<20, c.Logging.MaxBackups, c.Logging.Compress)
	default:
		writer, err = logging.NewFileWriter(expandHome(c.Logging.File))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open log output: %v", err)
	}

	config := logging.LoggerConfig{
		Formatters: []logging.Formatter{formatter},
		Writers:    []logging.Writer{writer},
	}
	config.ApplyLogLevel(c.Logging.Level)
	return logging.NewDefaultLoggerWithConfig(config), nil
}

// expandHome expands ~ to the user's home directory
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
