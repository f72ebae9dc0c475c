package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultSendRetries = 2

// Snapshot storage backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	Feed struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
		Mock    bool          `yaml:"mock"`
	} `yaml:"feed"`
	Schedule struct {
		Timezone            string        `yaml:"timezone"`
		HourlyCron          string        `yaml:"hourly_cron"`
		MinuteCron          string        `yaml:"minute_cron"`
		InitialRefreshDelay time.Duration `yaml:"initial_refresh_delay"`
		DispatchConcurrency int           `yaml:"dispatch_concurrency"`
		SendRetries         int           `yaml:"send_retries"`
	} `yaml:"schedule"`
	Storage struct {
		PreferencesFile string `yaml:"preferences_file"`
		SnapshotBackend string `yaml:"snapshot_backend"`
		SnapshotFile    string `yaml:"snapshot_file"`
		RedisAddr       string `yaml:"redis_addr"`
		RedisPassword   string `yaml:"redis_password"`
		RedisDB         int    `yaml:"redis_db"`
		SQLitePath      string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then the .env file, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Zero is a valid retry count, so its default is set before decoding.
	cfg.Schedule.SendRetries = defaultSendRetries

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	envFile := ".env"
	if v := os.Getenv("ENV_FILE"); v != "" {
		envFile = v
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	// Environment variable overrides
	if v := firstEnv("TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("BRSAPI_KEY"); v != "" {
		cfg.Feed.APIKey = v
	}
	if v := os.Getenv("BRSAPI_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("FEED_MOCK"); v != "" {
		cfg.Feed.Mock = v == "true" || v == "1"
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TZ_REFERENCE"); v != "" {
		cfg.Schedule.Timezone = v
	}
	if v := os.Getenv("PREFERENCES_FILE"); v != "" {
		cfg.Storage.PreferencesFile = v
	}
	if v := os.Getenv("SNAPSHOT_BACKEND"); v != "" {
		cfg.Storage.SnapshotBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Storage.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Storage.RedisDB = db
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	// Defaults
	if cfg.Feed.Timeout == 0 {
		cfg.Feed.Timeout = 15 * time.Second
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Asia/Tehran"
	}
	if cfg.Schedule.HourlyCron == "" {
		cfg.Schedule.HourlyCron = "@every 1h"
	}
	if cfg.Schedule.MinuteCron == "" {
		cfg.Schedule.MinuteCron = "0 * * * * *"
	}
	if cfg.Schedule.InitialRefreshDelay == 0 {
		cfg.Schedule.InitialRefreshDelay = 5 * time.Second
	}
	if cfg.Schedule.DispatchConcurrency == 0 {
		cfg.Schedule.DispatchConcurrency = 4
	}
	if cfg.Storage.PreferencesFile == "" {
		cfg.Storage.PreferencesFile = "data/user_settings.json"
	}
	if cfg.Storage.SnapshotBackend == "" {
		cfg.Storage.SnapshotBackend = BackendFile
	}
	if cfg.Storage.SnapshotFile == "" {
		cfg.Storage.SnapshotFile = "data/hourly_prices.json"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/market_courier.db"
	}

	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Location resolves the reference timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone %q: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (TELEGRAM_TOKEN)")
	}
	if c.Feed.APIKey == "" && !c.Feed.Mock {
		return fmt.Errorf("feed.api_key is required (BRSAPI_KEY)")
	}
	if c.Feed.Timeout < 0 {
		return fmt.Errorf("feed.timeout must be positive")
	}
	if c.Schedule.DispatchConcurrency < 0 {
		return fmt.Errorf("schedule.dispatch_concurrency must be positive")
	}
	if c.Schedule.SendRetries < 0 {
		return fmt.Errorf("schedule.send_retries must not be negative")
	}
	switch c.Storage.SnapshotBackend {
	case BackendFile:
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis snapshot backend")
		}
	default:
		return fmt.Errorf("storage.snapshot_backend must be %q or %q", BackendFile, BackendRedis)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
