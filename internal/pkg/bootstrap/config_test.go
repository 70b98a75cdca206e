package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := writeConfig(t, `
app:
  port: 4000
auth:
  jwt_secret: s3cret
lock:
  driver: redis
order:
  regular_customer_min: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.App.Port)
	assert.Equal(t, "storefront", cfg.App.Name)
	assert.Equal(t, "redis", cfg.Lock.Driver)
	assert.Equal(t, 10*time.Second, cfg.Lock.TTL)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Order.RegularCustomerMin)
	assert.Equal(t, 30*time.Second, cfg.Order.ProcessingTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: from-file\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("HTTP_PORT", "8088")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 8088, cfg.App.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"mysql without dsn", func(c *Config) { c.Storage.Driver = "mysql" }, "requires infra.mysql.dsn"},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "mongo" }, "unknown storage driver"},
		{"unknown lock", func(c *Config) { c.Lock.Driver = "etcd" }, "unknown lock driver"},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret"},
		{"bad port", func(c *Config) { c.App.Port = 0 }, "app.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.JWTSecret = "s"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFillsRegularCustomerMin(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "s"
	cfg.Order.RegularCustomerMin = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Order.RegularCustomerMin)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
