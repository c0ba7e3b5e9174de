// ABOUTME: Configuration loading for the contacts dashboard
// ABOUTME: Layers defaults, a TOML file under XDG config, .env and STELLAR_* environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/harperreed/stellar/models"
)

const (
	// AppName names the XDG directories used by the app.
	AppName = "stellar"

	// EnvPrefix prefixes environment overrides, e.g. STELLAR_API_BASE_URL.
	EnvPrefix = "STELLAR"

	// PathEnv points at an alternate config file.
	PathEnv = "STELLAR_CONFIG"

	// ConfigFileName is the file read from the XDG config directory.
	ConfigFileName = "config.toml"
)

// Config holds all settings.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Log    LogConfig    `mapstructure:"log"`
	UI     UIConfig     `mapstructure:"ui"`
	Export ExportConfig `mapstructure:"export"`
	Web    WebConfig    `mapstructure:"web"`
}

// APIConfig locates the contacts REST service.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// LogConfig controls structured logging. File is used by the TUI.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// UIConfig holds dashboard defaults.
type UIConfig struct {
	PageSize   int `mapstructure:"page_size"`
	RecentDays int `mapstructure:"recent_days"`
	ExportDays int `mapstructure:"export_days"`
}

// ExportConfig controls where CSV exports are saved.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// WebConfig controls the HTML dashboard listener.
type WebConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultPath returns the config file location, honouring STELLAR_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// DefaultLogPath is where the TUI writes its log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

func defaultExportDir() string {
	if xdg.UserDirs.Download != "" {
		return xdg.UserDirs.Download
	}
	return "."
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", DefaultLogPath())
	v.SetDefault("ui.page_size", models.DefaultPageSize)
	v.SetDefault("ui.recent_days", 5)
	v.SetDefault("ui.export_days", 30)
	v.SetDefault("export.dir", defaultExportDir())
	v.SetDefault("web.addr", ":8090")

	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from DefaultPath. A .env file in the working
// directory is applied to the environment first without overriding set variables.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(DefaultPath())
}

// LoadFrom reads configuration from path; a missing file yields defaults.
func LoadFrom(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = models.DefaultPageSize
	}
	if c.UI.RecentDays <= 0 {
		c.UI.RecentDays = 5
	}
	if c.UI.ExportDays <= 0 {
		c.UI.ExportDays = 30
	}
	if c.Export.Dir == "" {
		c.Export.Dir = defaultExportDir()
	}
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("ui.page_size", cfg.UI.PageSize)
	v.Set("ui.recent_days", cfg.UI.RecentDays)
	v.Set("ui.export_days", cfg.UI.ExportDays)
	v.Set("export.dir", cfg.Export.Dir)
	v.Set("web.addr", cfg.Web.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
