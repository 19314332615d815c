package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"

	"pdfcmd/internal/common"
)

const (
	appDirName     = "pdfcmd"
	configFileName = "config.toml"
	databaseName   = "pdfcmd.sqlite3"
)

// Config holds application configuration
type Config struct {
	DataDir        string
	DatabasePath   string
	LogLevel       string
	History        bool
	Workers        int
	ValidationMode string
	Logger         *slog.Logger

	logOutput io.Writer
}

// fileConfig is the on-disk shape of Config. Pointer fields stay nil when a
// key is absent so defaults survive.
type fileConfig struct {
	DataDir        *string `toml:"data_dir"`
	DatabasePath   *string `toml:"database_path"`
	LogLevel       *string `toml:"log_level"`
	History        *bool   `toml:"history"`
	Workers        *int    `toml:"workers"`
	ValidationMode *string `toml:"validation_mode"`
}

// New creates a configuration populated with defaults
func New() *Config {
	cfg := &Config{
		LogLevel:       "warn",
		History:        true,
		ValidationMode: common.ValidationRelaxed,
	}
	cfg.setupDirectories(getAppDataDir())
	cfg.Logger = NewLogger(cfg.output(), cfg.LogLevel)
	return cfg
}

// Load builds the configuration from defaults overlaid with the TOML file at
// path. An empty path means the default location, which may be absent.
func Load(path string) (*Config, error) {
	cfg := New()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	fc, err := loadConfigFromFile(path)
	switch {
	case err == nil:
		if err := cfg.apply(fc); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file is fine
	default:
		return nil, err
	}

	cfg.Logger = NewLogger(cfg.output(), cfg.LogLevel)
	return cfg, nil
}

// DefaultConfigPath returns the config file location under the user config dir
func DefaultConfigPath() string {
	return filepath.Join(getAppDataDir(), configFileName)
}

// EnsureDirectories creates the data directory and the database directory
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.DatabasePath != "" && c.DatabasePath != common.InMemoryDatabase {
		dirs = append(dirs, filepath.Dir(c.DatabasePath))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, common.DefaultFilePermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SetLogLevel rebuilds the logger at the given level
func (c *Config) SetLogLevel(level string) error {
	if _, err := parseLevel(level); err != nil {
		return err
	}
	c.LogLevel = level
	c.Logger = NewLogger(c.output(), level)
	return nil
}

// SetLogOutput redirects the logger to w, keeping the current level
func (c *Config) SetLogOutput(w io.Writer) {
	c.logOutput = w
	c.Logger = NewLogger(w, c.LogLevel)
}

func (c *Config) output() io.Writer {
	if c.logOutput == nil {
		return os.Stderr
	}
	return c.logOutput
}

func (c *Config) setupDirectories(dataDir string) {
	c.DataDir = dataDir
	c.DatabasePath = filepath.Join(dataDir, databaseName)
}

func (c *Config) apply(fc *fileConfig) error {
	if fc.DataDir != nil {
		c.setupDirectories(*fc.DataDir)
	}
	if fc.DatabasePath != nil {
		c.DatabasePath = *fc.DatabasePath
	}
	if fc.LogLevel != nil {
		if _, err := parseLevel(*fc.LogLevel); err != nil {
			return err
		}
		c.LogLevel = *fc.LogLevel
	}
	if fc.History != nil {
		c.History = *fc.History
	}
	if fc.Workers != nil {
		if *fc.Workers < 0 {
			return fmt.Errorf("workers must not be negative, got %d", *fc.Workers)
		}
		c.Workers = *fc.Workers
	}
	if fc.ValidationMode != nil {
		mode := strings.ToLower(*fc.ValidationMode)
		if mode != common.ValidationRelaxed && mode != common.ValidationStrict {
			return fmt.Errorf("unknown validation mode %q", *fc.ValidationMode)
		}
		c.ValidationMode = mode
	}
	return nil
}

func loadConfigFromFile(path string) (*fileConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer file.Close()

	var fc fileConfig
	if err := toml.NewDecoder(file).SetTagName("toml").Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode TOML config %s: %w", path, err)
	}
	return &fc, nil
}

// NewLogger creates a text logger writing to w at the given level
func NewLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func parseLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

func getAppDataDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "."+appDirName)
	}
	return filepath.Join(configDir, appDirName)
}
