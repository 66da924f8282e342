// Package config loads studyloop settings from defaults, an optional YAML
// file and STUDYLOOP_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/studyloop/internal/mastery"
)

const envPrefix = "STUDYLOOP"

type Config struct {
	DBPath    string          `mapstructure:"db_path"`
	User      string          `mapstructure:"user"`
	Log       LogConfig       `mapstructure:"log"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Mastery   mastery.Config  `mapstructure:"mastery"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

// CacheConfig enables the Redis mastery cache when URL is set.
type CacheConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

// MetricsConfig names a Prometheus textfile to write after each command.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type SchedulerConfig struct {
	Interleave bool `mapstructure:"interleave"`
	QueueLimit int  `mapstructure:"queue_limit"`
}

func setDefaults(v *viper.Viper) {
	d := mastery.DefaultConfig()
	v.SetDefault("db_path", "")
	v.SetDefault("user", "local")
	v.SetDefault("log.mode", "dev")
	v.SetDefault("cache.url", "")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("mastery.decay", d.Decay)
	v.SetDefault("mastery.stability_window", d.StabilityWindow)
	v.SetDefault("mastery.variance_ceiling", d.VarianceCeiling)
	v.SetDefault("mastery.trend_recent", d.TrendRecent)
	v.SetDefault("mastery.trend_historical", d.TrendHistorical)
	v.SetDefault("scheduler.interleave", true)
	v.SetDefault("scheduler.queue_limit", 20)
}

// Load reads configuration. An explicit path must exist; without one the
// file is looked up as studyloop.yaml in $XDG_CONFIG_HOME/studyloop (or
// ~/.config/studyloop) and the current directory, and may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// STUDYLOOP_DB is shared with store.DefaultDBPath.
	_ = v.BindEnv("db_path", envPrefix+"_DB", envPrefix+"_DB_PATH")
	_ = v.BindEnv("cache.url", envPrefix+"_CACHE_URL", "REDIS_URL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("studyloop")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	m := c.Mastery
	switch {
	case m.Decay <= 0 || m.Decay > 1:
		return fmt.Errorf("mastery.decay must be in (0, 1], got %v", m.Decay)
	case m.VarianceCeiling <= 0:
		return fmt.Errorf("mastery.variance_ceiling must be positive, got %v", m.VarianceCeiling)
	case c.Scheduler.QueueLimit < 0:
		return fmt.Errorf("scheduler.queue_limit must not be negative, got %d", c.Scheduler.QueueLimit)
	case strings.TrimSpace(c.User) == "":
		return errors.New("user must not be empty")
	}
	return nil
}

func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "studyloop"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "studyloop"), nil
}
