package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "foodgram", cfg.App.Name)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 6, cfg.HTTP.DefaultPageSize)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[app]
port = 9090

[database]
driver = "postgres"
host = "db"
port = 5432
user = "food"
password = "secret"
name = "foodgram"
params = "sslmode=disable"
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTPAddr())
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "host=db.internal user=food password=secret dbname=foodgram port=5432 sslmode=disable", cfg.DSN())
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/foodgram?parseTime=true&loc=Local&charset=utf8mb4", cfg.DSN())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "[database]\ndriver = \"oracle\"\n"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}
