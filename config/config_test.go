package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderpack-backend/storage"
)

// unset clears key for the duration of the test.
func unset(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_URL", "STORAGE_TYPE", "STORAGE_LOCAL_PATH",
		"AWS_S3_BUCKET", "AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
		"GEMINI_API_KEY", "GEMINI_MODEL", "EXPORT_TEMP_DIR", "LIBRARY_PATH", "LOG_LEVEL",
	} {
		unset(t, k)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, storage.StorageType(""), cfg.Storage.Type)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DetectionEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_TYPE", "S3")
	t.Setenv("AWS_S3_BUCKET", "packs")
	t.Setenv("AWS_REGION", "ap-south-1")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, storage.StorageTypeS3, cfg.Storage.Type)
	assert.Equal(t, "packs", cfg.Storage.S3Bucket)
	assert.Equal(t, "ap-south-1", cfg.Storage.S3Region)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DetectionEnabled())
}

func TestFromEnvRejectsBadStorage(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_TYPE", "ftp")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "unknown STORAGE_TYPE")

	t.Setenv("STORAGE_TYPE", "s3")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "AWS_S3_BUCKET")
}

func TestLoadReadsFirstExistingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	dir := t.TempDir()
	env := filepath.Join(dir, "server.env")
	require.NoError(t, os.WriteFile(env, []byte("PORT=9999\nLIBRARY_PATH=/etc/tenderpack/library.yaml\n"), 0o644))

	cfg, err := Load(filepath.Join(dir, "missing.env"), env)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port, "existing variables win over the file")
	assert.Equal(t, "/etc/tenderpack/library.yaml", cfg.LibraryPath)
}
