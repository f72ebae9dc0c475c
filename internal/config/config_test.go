package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points .env lookup at an empty dir and clears overriding variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, ".env"))
	for _, k := range []string{
		"TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN", "BRSAPI_KEY", "BRSAPI_URL", "FEED_MOCK",
		"HTTPS_PROXY", "TZ_REFERENCE", "PREFERENCES_FILE", "SNAPSHOT_BACKEND",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SQLITE_PATH",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Asia/Tehran", cfg.Schedule.Timezone)
	assert.Equal(t, "@every 1h", cfg.Schedule.HourlyCron)
	assert.Equal(t, "0 * * * * *", cfg.Schedule.MinuteCron)
	assert.Equal(t, 5*time.Second, cfg.Schedule.InitialRefreshDelay)
	assert.Equal(t, 15*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 4, cfg.Schedule.DispatchConcurrency)
	assert.Equal(t, 2, cfg.Schedule.SendRetries)
	assert.Equal(t, BackendFile, cfg.Storage.SnapshotBackend)
	assert.Equal(t, "data/market_courier.db", cfg.Storage.SQLitePath)
}

func TestLoad_YAMLThenEnvFileThenEnv(t *testing.T) {
	dir := isolate(t)
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
telegram:
  bot_token: yaml-token
feed:
  api_key: yaml-key
  timeout: 3s
schedule:
  timezone: UTC
storage:
  snapshot_backend: redis
  redis_addr: localhost:6379
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BRSAPI_KEY=dotenv-key\n"), 0o644))
	t.Setenv("TELEGRAM_TOKEN", "env-token")

	cfg, err := Load(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "dotenv-key", cfg.Feed.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Telegram.BotToken = "t"
		c.Feed.APIKey = "k"
		c.Schedule.Timezone = "Asia/Tehran"
		c.Storage.SnapshotBackend = BackendFile
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"missing token", func(c *Config) { c.Telegram.BotToken = "" }, false},
		{"missing key", func(c *Config) { c.Feed.APIKey = "" }, false},
		{"mock needs no key", func(c *Config) { c.Feed.APIKey = ""; c.Feed.Mock = true }, true},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, false},
		{"redis without addr", func(c *Config) { c.Storage.SnapshotBackend = BackendRedis }, false},
		{"unknown backend", func(c *Config) { c.Storage.SnapshotBackend = "s3" }, false},
		{"negative retries", func(c *Config) { c.Schedule.SendRetries = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoad_SendRetries(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want int
	}{
		{"absent uses default", "schedule:\n  timezone: UTC\n", 2},
		{"explicit zero kept", "schedule:\n  send_retries: 0\n", 0},
		{"explicit value", "schedule:\n  send_retries: 5\n", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Schedule.SendRetries)
		})
	}
}
