package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "tasktory.db", cfg.DB.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 365, cfg.Journal.Horizon)
	require.Equal(t, ",", cfg.Journal.TimesDelimiter)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
db:
  path: /tmp/from-file.db
journal:
  horizon: 30
  times_delimiter: ";"
`), 0o644))

	t.Setenv("TASKTORY_CONFIG_PATH", path)
	t.Setenv("TASKTORY_DB_PATH", "/tmp/from-env.db")
	t.Setenv("TASKTORY_TRANSPORT_MODE", "stdio")
	t.Setenv("TASKTORY_SNAPSHOT_PATH", "/tmp/snap.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "/tmp/from-env.db", cfg.DB.Path)
	require.Equal(t, 30, cfg.Journal.Horizon)
	require.Equal(t, ";", cfg.Journal.TimesDelimiter)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "/tmp/snap.yaml", cfg.Snapshot.Path)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("port", func(t *testing.T) {
		t.Setenv("TASKTORY_SERVER_PORT", "eighty")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("horizon", func(t *testing.T) {
		t.Setenv("TASKTORY_JOURNAL_HORIZON", "soon")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("transport", func(t *testing.T) {
		t.Setenv("TASKTORY_TRANSPORT_MODE", "carrier-pigeon")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("TASKTORY_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		require.Error(t, err)
	})
}
