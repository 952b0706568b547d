package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "orders", cfg.Database.Database)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, 5*time.Second, cfg.Queue.ProcessDelay)
	assert.Equal(t, 2*time.Minute, cfg.Queue.CompleteDelay)
	assert.Equal(t, []time.Duration{10 * time.Second, 60 * time.Second, 300 * time.Second}, cfg.Queue.ProcessBackoff)
	assert.Equal(t, []time.Duration{30 * time.Second, 60 * time.Second, 300 * time.Second}, cfg.Queue.CompleteBackoff)
	assert.Equal(t, []time.Duration{10 * time.Second, 60 * time.Second, 120 * time.Second}, cfg.Queue.StockBackoff)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("QUEUE_WORKERS", "8")
	t.Setenv("QUEUE_PROCESS_DELAY_SECONDS", "1")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Queue.Workers)
	assert.Equal(t, time.Second, cfg.Queue.ProcessDelay)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
			Database: DatabaseConfig{
				Host: "localhost", Port: 5432, User: "postgres", Database: "orders",
				MaxConnections: 10, MinConnections: 2,
			},
			Logger: LoggerConfig{Level: "info", Format: "json"},
			Auth:   AuthConfig{APIKey: "key"},
			Queue:  QueueConfig{Workers: 4},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"Invalid server port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"Missing database host", func(c *Config) { c.Database.Host = "" }, "database host"},
		{"Min above max connections", func(c *Config) { c.Database.MinConnections = 50 }, "cannot exceed"},
		{"Zero workers", func(c *Config) { c.Queue.Workers = 0 }, "queue workers"},
		{"Invalid log level", func(c *Config) { c.Logger.Level = "verbose" }, "invalid log level"},
		{"Invalid log format", func(c *Config) { c.Logger.Format = "xml" }, "invalid log format"},
		{"Redis enabled without addr", func(c *Config) { c.Redis = RedisConfig{Enabled: true} }, "redis address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, Database: "d"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.ConnectionString())
}
