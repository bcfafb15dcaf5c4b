package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the configuration implementation.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Events EventsConfig `mapstructure:"events"`
	Jobs   JobsConfig   `mapstructure:"jobs"`
	Worker WorkerConfig `mapstructure:"worker"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// Mode is the gin mode: debug, release or test.
	Mode string `mapstructure:"mode"`
}

type StoreConfig struct {
	// Driver is one of fs, memory, pebble, redis, postgres, sqlite.
	Driver string `mapstructure:"driver"`
	// Path is the root directory for fs and pebble.
	Path string `mapstructure:"path"`
	// DSN is the connection string for postgres and sqlite.
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

type EventsConfig struct {
	// Driver is memory or redis.
	Driver string `mapstructure:"driver"`
	Buffer int    `mapstructure:"buffer"`
}

type JobsConfig struct {
	Lease time.Duration `mapstructure:"lease"`
}

type WorkerConfig struct {
	Concurrency  int           `mapstructure:"concurrency"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	storeDrivers = []string{"fs", "memory", "pebble", "redis", "postgres", "sqlite"}
	eventDrivers = []string{"memory", "redis"}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("store.driver", "fs")
	v.SetDefault("store.path", ".db")
	v.SetDefault("store.dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.prefix", "jobtrack:")
	v.SetDefault("events.driver", "memory")
	v.SetDefault("events.buffer", 64)
	v.SetDefault("jobs.lease", "2m")
	v.SetDefault("worker.concurrency", 1)
	v.SetDefault("worker.poll_interval", "1s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configPath when set, otherwise config.yaml from the working
// directory or /etc/jobtrack if present. JOBTRACK_* environment variables
// override file values, e.g. JOBTRACK_STORE_DRIVER.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("jobtrack")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/jobtrack")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !contains(storeDrivers, c.Store.Driver) {
		return fmt.Errorf("config: store.driver %q must be one of %v", c.Store.Driver, storeDrivers)
	}
	if !contains(eventDrivers, c.Events.Driver) {
		return fmt.Errorf("config: events.driver %q must be one of %v", c.Events.Driver, eventDrivers)
	}
	if c.Jobs.Lease <= 0 {
		return fmt.Errorf("config: jobs.lease must be positive, got %s", c.Jobs.Lease)
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 1
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
