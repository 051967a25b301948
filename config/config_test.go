package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.RetryPolicy().MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryPolicy().BaseDelay)
	assert.Empty(t, cfg.Origins())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/board.db")
	t.Setenv("MUTATION_MAX_ATTEMPTS", "5")
	t.Setenv("MUTATION_BACKOFF_BASE_MS", "25")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/board.db", cfg.SQLitePath)
	assert.Equal(t, 5, cfg.RetryPolicy().MaxAttempts)
	assert.Equal(t, 25*time.Millisecond, cfg.RetryPolicy().BaseDelay)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.Origins())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"postgres without url", Config{StoreDriver: DriverPostgres, MutationMaxAttempts: 3}},
		{"unknown driver", Config{StoreDriver: "mongo", MutationMaxAttempts: 3}},
		{"no attempts", Config{StoreDriver: DriverMemory}},
		{"negative backoff", Config{StoreDriver: DriverMemory, MutationMaxAttempts: 3, MutationBackoffBaseMS: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.cfg.Validate())
		})
	}
	assert.NoError(t, (&Config{StoreDriver: DriverPostgres, DatabaseURL: "postgres://x", MutationMaxAttempts: 1}).Validate())
}
