package configutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	DataDir  string   `json:"data_dir"`
	Attempts int      `json:"attempts"`
	Leagues  []string `json:"leagues"`
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		// comments are allowed
		data_dir: "data",
		attempts: 3,
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{attempts: 5}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, 5, cfg.Attempts)
}

func TestReadConfigNotFound(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadConfigWithDefaults(t *testing.T) {
	defaults := testConfig{DataDir: "out", Attempts: 3, Leagues: []string{"EPL"}}

	missing, err := ReadConfigWithDefaults(filepath.Join(t.TempDir(), "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, missing)

	dir := t.TempDir()
	err = os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{attempts: 1}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Attempts)
	require.Equal(t, "out", cfg.DataDir)
	require.Equal(t, []string{"EPL"}, cfg.Leagues)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "config.local.json5", LocalPath("config.json5"))
	require.Equal(t, filepath.Join("a", "telemetry.local.json5"), LocalPath(filepath.Join("a", "telemetry.json5")))
	require.Equal(t, "config.local", LocalPath("config"))
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{data_dir: "local"}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", cfg.DataDir)
}

func TestReadConfigParseError(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{data_dir: `), 0600)
	require.NoError(t, err)

	_, err = ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.Error(t, err)
	require.False(t, errors.Is(err, os.ErrNotExist))
	require.Contains(t, err.Error(), "config.json5")
}
