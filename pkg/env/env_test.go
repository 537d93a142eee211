package env_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bijuliyatra/bijuli-client/pkg/env"
)

func TestParse_ReturnsTypedValue(t *testing.T) {
	t.Setenv("SESSION_EXPIRY_SWEEP_INTERVAL", "30s")

	d, err := env.Parse[time.Duration]("SESSION_EXPIRY_SWEEP_INTERVAL")

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestParse_ErrorWhenMissing(t *testing.T) {
	_, err := env.Parse[string]("BIJULI_TEST_SURELY_MISSING")

	assert.ErrorIs(t, err, env.ErrNotFound)
}

func TestParseOptional_NilWhenMissing(t *testing.T) {
	v, err := env.ParseOptional[int]("BIJULI_TEST_SURELY_MISSING")

	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParseOrDefault_ErrorWhenInvalid(t *testing.T) {
	t.Setenv("REDIS_DB", "first")

	v, err := env.ParseOrDefault("REDIS_DB", 3)

	assert.Error(t, err)
	assert.Equal(t, 3, v)
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("LOGIN_ROUTE=/signin\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOGIN_ROUTE", "")
	require.NoError(t, os.Unsetenv("LOGIN_ROUTE"))

	require.NoError(t, env.LoadDotEnv(file, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "/signin", os.Getenv("LOGIN_ROUTE"))
}
