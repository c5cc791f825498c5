package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("CELLMAP_THEME sets theme", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CELLMAP_THEME", "dark")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "dark", cfg.UI.Theme)
	})

	t.Run("CELLMAP_DEBUG accepts 1 and true", func(t *testing.T) {
		for _, v := range []string{"1", "true", "TRUE"} {
			clearEnv(t)
			t.Setenv("CELLMAP_DEBUG", v)

			cfg := DefaultConfig()
			cfg.applyEnvOverrides()

			assert.True(t, cfg.Logging.DebugMode, "value %q", v)
		}
	})

	t.Run("CELLMAP_DEBUG=0 disables debug mode", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CELLMAP_DEBUG", "0")

		cfg := DefaultConfig()
		cfg.Logging.DebugMode = true
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Logging.DebugMode)
	})

	t.Run("empty variables leave config alone", func(t *testing.T) {
		clearEnv(t)

		cfg := DefaultConfig()
		cfg.ParallelGroup = "4"
		cfg.applyEnvOverrides()

		assert.Equal(t, "4", cfg.ParallelGroup)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("overrides apply on top of file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CELLMAP_PARALLEL_GROUP", "7")
		t.Setenv("CELLMAP_LOG_LEVEL", "debug")

		path := DefaultPath(t.TempDir())
		cfg := DefaultConfig()
		cfg.ParallelGroup = "2"
		require.NoError(t, cfg.Save(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "7", loaded.ParallelGroup)
		assert.Equal(t, "debug", loaded.Logging.Level)
	})
}
