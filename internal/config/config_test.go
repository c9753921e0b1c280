package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadServer("")
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "apiverse_session", cfg.SessionName)
	assert.False(t, cfg.EnforceUniqueLikes)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestLoadServer_Env(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ENFORCE_UNIQUE_LIKES", "true")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := LoadServer("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.True(t, cfg.EnforceUniqueLikes)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
}

func TestLoadServer_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\nsession_name: from_file\n"), 0o600))
	t.Setenv("SESSION_NAME", "from_env")

	cfg, err := LoadServer(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "from_env", cfg.SessionName)
}

func TestLoadServer_Invalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := LoadServer("")
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestLoadServer_MissingFile(t *testing.T) {
	_, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadClient(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PREFS_DRIVER", "redis")
	t.Setenv("PROFILE_ID", "laptop")
	t.Setenv("TOGGLE_TIMEOUT", "2s")

	cfg, err := LoadClient("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8081", cfg.APIURL)
	assert.Equal(t, PrefsDriverRedis, cfg.PrefsDriver)
	assert.Equal(t, "laptop", cfg.ProfileID)
	assert.Equal(t, 2*time.Second, cfg.ToggleTimeout)
	assert.Equal(t, 64, cfg.CacheCapacity)
}

func TestLoadClient_InvalidDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PREFS_DRIVER", "cookies")

	_, err := LoadClient("")
	assert.ErrorContains(t, err, "PREFS_DRIVER")
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
