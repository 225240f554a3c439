package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Run from an empty directory so no adminctl.toml is picked up.
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "adminctl", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "http://localhost:3001", cfg.API.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.API.Timeout)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "stderr", cfg.Log.Output)
		assert.Equal(t, 5, cfg.UI.PageSize)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("loads values from environment variables with ADMIN prefix", func(t *testing.T) {
		t.Setenv("ADMIN_API_BASE_URL", "https://api.example.com")
		t.Setenv("ADMIN_API_TIMEOUT", "3s")
		t.Setenv("ADMIN_LOG_LEVEL", "debug")
		t.Setenv("ADMIN_UI_PAGE_SIZE", "20")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.API.Timeout)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 20, cfg.UI.PageSize)
	})

	t.Run("reads an explicit config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "panel.toml")
		content := "[api]\nbase_url = \"http://backend:9000\"\n\n[ui]\npage_size = 10\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "http://backend:9000", cfg.API.BaseURL)
		assert.Equal(t, 10, cfg.UI.PageSize)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "panel.toml")
		require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://backend:9000\"\n"), 0o600))
		t.Setenv("ADMIN_API_BASE_URL", "http://override:1")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://override:1", cfg.API.BaseURL)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
	})

	t.Run("rejects base url without scheme", func(t *testing.T) {
		t.Setenv("ADMIN_API_BASE_URL", "localhost:3001")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api.base_url")
	})

	t.Run("rejects unsupported page size", func(t *testing.T) {
		t.Setenv("ADMIN_UI_PAGE_SIZE", "7")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ui.page_size")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		t.Setenv("ADMIN_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}
