package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_DEFAULT_DISK", "s3")
	t.Setenv("STORAGE_LOCAL_BASE_URL", "http://cdn.local/files/")
	t.Setenv("STORAGE_MAX_STREAM_BYTES", "1024")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "s3", cfg.Storage.DefaultDisk)
	assert.Equal(t, "http://cdn.local/files", cfg.Storage.LocalBaseURL)
	assert.Equal(t, int64(1024), cfg.Storage.MaxStreamBytes)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DEFAULT_DISK", "")
	t.Setenv("STORAGE_MAX_STREAM_BYTES", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()

	assert.Equal(t, "local", cfg.Storage.DefaultDisk)
	assert.Equal(t, "local", cfg.Storage.LocalDisk)
	assert.Equal(t, "s3", cfg.Storage.MinIODisk)
	assert.Equal(t, int64(32<<20), cfg.Storage.MaxStreamBytes)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvInt64(t *testing.T) {
	key := "TEST_INT64_VAR"

	t.Setenv(key, "9000000000")
	assert.Equal(t, int64(9000000000), getEnvInt64(key, 0))

	t.Setenv(key, "-5")
	assert.Equal(t, int64(7), getEnvInt64(key, 7))

	t.Setenv(key, "nope")
	assert.Equal(t, int64(7), getEnvInt64(key, 7))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("loud"))
}
