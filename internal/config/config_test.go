package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
environment: DEV
dev_mode_bypass: true
server:
  addr: ":9090"
db:
  host: localhost
  user: opsboard
  password: secret
  name: opsboard
auth:
  okta_domain: https://dev.okta.example.com/
kafka:
  brokers: ["localhost:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5432, cfg.DB.Port, "default port applies")
	assert.Equal(t, "disable", cfg.DB.SSLMode, "default sslmode applies")
	assert.Equal(t, "opsboard-changes", cfg.Kafka.Topic, "default topic applies")
	assert.True(t, cfg.DevModeBypass)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "https://dev.okta.example.com", cfg.Auth.OktaDomain,
		"trailing slash stripped from issuer")
}

func TestDSN(t *testing.T) {
	var cfg Config
	cfg.DB.Host = "db.internal"
	cfg.DB.Port = 5433
	cfg.DB.User = "app"
	cfg.DB.Password = "pw"
	cfg.DB.Name = "opsboard"
	cfg.DB.SSLMode = "require"

	assert.Equal(t,
		"host=db.internal port=5433 user=app password=pw dbname=opsboard sslmode=require",
		cfg.DSN())
}

func TestNormalizeOktaIssuer(t *testing.T) {
	assert.Equal(t, "https://x.okta.com", normalizeOktaIssuer(" https://x.okta.com/ "))
	assert.Equal(t, "https://x.okta.com/oauth2/default", normalizeOktaIssuer("https://x.okta.com/oauth2/default"))
}
