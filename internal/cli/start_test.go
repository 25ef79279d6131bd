package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harun/pagina/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCommand(t *testing.T) {
	t.Run("help text", func(t *testing.T) {
		out, err := execute(t, "start", "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "Start the pagina daemon service")
	})

	t.Run("refuses config without bot token", func(t *testing.T) {
		t.Setenv("PAGINA_BOT_TOKEN", "")
		configPath, _ := writeTestConfig(t)

		_, err := execute(t, "start", "--config", configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bot token is required")
	})

	t.Run("refuses malformed config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "pagina.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"paginator": {"base_id": 7}}`), 0644))

		_, err := execute(t, "start", "--config", configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})
}

func TestLoggerConfig(t *testing.T) {
	lc := loggerConfig(config.LoggingConfig{
		Level:      "debug",
		File:       "/tmp/pagina.log",
		Console:    true,
		MaxSize:    10,
		MaxAge:     3,
		MaxBackups: 2,
		Compress:   true,
		Redaction:  true,
	})

	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "/tmp/pagina.log", lc.File)
	assert.True(t, lc.Console)
	assert.True(t, lc.Pretty)
	assert.Equal(t, 10, lc.MaxSize)
	assert.Equal(t, 3, lc.MaxAge)
	assert.Equal(t, 2, lc.MaxBackups)
	assert.True(t, lc.Compress)
	assert.True(t, lc.Redaction)
}
