package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/harrisonrobin/taskhub/pkg/dedupe"
)

const (
	xdgAppName = "taskhub"
	configFile = "config.yaml"
	envPrefix  = "TASKHUB"

	DefaultCalendar  = "Tasks"
	DefaultTimeframe = "week"
	DefaultSyncDays  = 30
)

type Config struct {
	Calendar            string  `mapstructure:"calendar"`
	User                string  `mapstructure:"user"`
	Database            string  `mapstructure:"database"`
	Index               string  `mapstructure:"index"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	Timeframe           string  `mapstructure:"timeframe"`
	SyncDays            int     `mapstructure:"sync_days"`
}

// GetConfigDir returns ~/.config/taskhub.
func GetConfigDir() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file, if any, and applies TASKHUB_* environment
// overrides on top of the defaults.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Database = expandHome(cfg.Database)
	cfg.Index = expandHome(cfg.Index)
	return &cfg, nil
}

func newViper(path string) (*viper.Viper, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("calendar", DefaultCalendar)
	v.SetDefault("user", os.Getenv("USER"))
	v.SetDefault("database", filepath.Join(dir, "taskhub.db"))
	v.SetDefault("index", filepath.Join(dir, "sources.db"))
	v.SetDefault("similarity_threshold", dedupe.DefaultSimilarityThreshold)
	v.SetDefault("timeframe", DefaultTimeframe)
	v.SetDefault("sync_days", DefaultSyncDays)
	return v, nil
}

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg as YAML to path.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("calendar", cfg.Calendar)
	v.Set("user", cfg.User)
	v.Set("database", cfg.Database)
	v.Set("index", cfg.Index)
	v.Set("similarity_threshold", cfg.SimilarityThreshold)
	v.Set("timeframe", cfg.Timeframe)
	v.Set("sync_days", cfg.SyncDays)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Chmod(path, 0600)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Calendar) == "" {
		errs = append(errs, errors.New("calendar: must not be empty"))
	}
	if strings.TrimSpace(c.User) == "" {
		errs = append(errs, errors.New("user: must not be empty (set it with 'taskhub config set-user')"))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database: must not be empty"))
	}
	if err := c.Dedupe().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("similarity_threshold: %w", err))
	}
	if _, err := dedupe.TimeframeWindow(c.Timeframe, time.Now()); err != nil {
		errs = append(errs, fmt.Errorf("timeframe: %w", err))
	}
	if c.SyncDays <= 0 {
		errs = append(errs, fmt.Errorf("sync_days: %d is not positive", c.SyncDays))
	}
	return errors.Join(errs...)
}

// Dedupe returns the duplicate detection settings.
func (c *Config) Dedupe() dedupe.Config {
	return dedupe.Config{SimilarityThreshold: c.SimilarityThreshold}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
