package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 8190, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "gemini", config.LLM.Provider)
	assert.Equal(t, "en", config.Sessions.DefaultLanguage)
	assert.Equal(t, time.Hour, config.Sessions.ParseTTL())
	assert.Equal(t, 60*time.Second, config.LLM.ParseTimeout())
}

func TestLoadFromFilesOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fablab.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000

[sessions]
ttl = "30m"
`), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, 30*time.Minute, config.Sessions.ParseTTL())
	// Untouched values keep their defaults
	assert.Equal(t, "localhost", config.Server.Host)
}

func TestLaterFilesWin(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(base, []byte("[server]\nport = 9000\n"), 0644))
	require.NoError(t, os.WriteFile(override, []byte("[server]\nport = 9001\n"), 0644))

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)
	assert.Equal(t, 9001, config.Server.Port)
}

func TestEnvOverridesFiles(t *testing.T) {
	t.Setenv("FABLAB_SERVER_PORT", "9100")
	t.Setenv("FABLAB_LLM_PROVIDER", "claude")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, "claude", config.LLM.Provider)
}

func TestFlagOverridesWinOverEverything(t *testing.T) {
	t.Setenv("FABLAB_SERVER_PORT", "9100")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	ApplyFlagOverrides(config, 9200, "0.0.0.0")
	assert.Equal(t, 9200, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)

	// Zero values leave config untouched
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 9200, config.Server.Port)
}

func TestMissingConfigFileFails(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParseFallbacks(t *testing.T) {
	s := SessionsConfig{TTL: "not a duration"}
	assert.Equal(t, time.Hour, s.ParseTTL())

	l := LLMConfig{Timeout: "-5s"}
	assert.Equal(t, 60*time.Second, l.ParseTimeout())
}
