package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
database:
  driver: postgres
  dsn: "host=localhost user=barrio"
otp:
  cooldown: 30s
`), 0o600))

	t.Setenv("BARRIORED_DATABASE__DSN", "host=db user=override")
	t.Setenv("BARRIORED_REDIS__ADDR", "redis:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=override", cfg.Database.DSN)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.OTP.Cooldown)
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxSize)
	assert.Equal(t, "whatsapp.barriored.co", cfg.OTP.PlaceholderDomain)
	assert.Equal(t, 5*time.Minute, cfg.OTP.RequestTTL)
	assert.Equal(t, "moderation.events", cfg.Kafka.Topic)
}
