package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	return path
}

func TestLoad_DefaultsAndLists(t *testing.T) {
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", writeKeyFile(t))
	t.Setenv("ADMIN_USER_IDS", "uid-1, uid-2 ,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("STORAGE_BUCKET", "estate-images")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.ServerTimeout)
	assert.Equal(t, time.Hour, cfg.DBConnMaxLifetime)
	assert.Equal(t, []string{"uid-1", "uid-2"}, cfg.AdminUserIDs)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "https://storage.googleapis.com/estate-images", cfg.StoragePublicBaseURL)
	assert.True(t, cfg.StorageConfigured())
	assert.Equal(t, 6, cfg.FeaturedPropertiesLimit)
	assert.Equal(t, 20, cfg.SearchResultsLimit)
}

func TestLoad_RequiresFirebaseKey(t *testing.T) {
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_SERVICE_ACCOUNT_KEY_PATH")
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", writeKeyFile(t))
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
}
