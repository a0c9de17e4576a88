package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "hospital_data.db", cfg.DB.Path)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.DB.MaxIdleConns)
	assert.Equal(t, "*", cfg.App.CORSOrigin)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"General", "ICU", "Pediatrics", "Maternity", "Surgery"}, cfg.Hospital.Departments)
	assert.Equal(t, 50, cfg.Hospital.BedsPerDepartment)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/care.db")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://ward.example")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("HOSPITAL_DEPARTMENTS", " ICU , ,Oncology")
	t.Setenv("HOSPITAL_BEDS_PER_DEPARTMENT", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/care.db", cfg.DB.Path)
	assert.Equal(t, "require", cfg.DB.SSLMode)
	assert.Equal(t, "https://ward.example", cfg.App.CORSOrigin)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"ICU", "Oncology"}, cfg.Hospital.Departments)
	assert.Equal(t, 8, cfg.Hospital.BedsPerDepartment)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_PORT=7000\nLOG_LEVEL=debug\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.App.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}
