package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "chrome", cfg.Browser)
	assert.Equal(t, 5000, cfg.DefaultTimeout)
	assert.Equal(t, 30000, cfg.NavigationTimeout)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, ScreenshotOnFailure, cfg.ScreenshotPolicy)
	assert.True(t, cfg.GetHeadless())
	assert.False(t, cfg.GetNoColor())
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flowright.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"browser": "firefox",
		"defaultTimeout": 2500,
		"concurrency": 4,
		"headless": false,
		"screenshotPolicy": "every"
	}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "firefox", cfg.Browser)
	assert.Equal(t, 2500, cfg.DefaultTimeout)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.False(t, cfg.GetHeadless())
	assert.Equal(t, ScreenshotEvery, cfg.ScreenshotPolicy)
	// untouched fields keep defaults
	assert.Equal(t, 30000, cfg.NavigationTimeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FLOWRIGHT_BROWSER", "webkit")
	t.Setenv("FLOWRIGHT_DEFAULT_TIMEOUT_MS", "1234")
	t.Setenv("FLOWRIGHT_HEADLESS", "0")
	t.Setenv("FLOWRIGHT_SCREENSHOT_POLICY", "off")

	dir := t.TempDir()
	path := filepath.Join(dir, "flowright.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"browser": "chrome"}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "webkit", cfg.Browser)
	assert.Equal(t, 1234, cfg.DefaultTimeout)
	assert.False(t, cfg.GetHeadless())
	assert.Equal(t, ScreenshotOff, cfg.ScreenshotPolicy)
}

func TestLoadConfig_BadMsEnvIgnored(t *testing.T) {
	t.Setenv("FLOWRIGHT_DEFAULT_TIMEOUT_MS", "not-a-number")
	cfg := DefaultConfig()
	cfg.applyEnv()
	assert.Equal(t, 5000, cfg.DefaultTimeout)
}

func TestFindAndLoadConfig_MissingFallsBack(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Browser, cfg.Browser)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
BASE_URL=https://example.com
QUOTED="hello world"
SINGLE='single'
EMPTYLINE

NOEQUALS
`), 0o644))

	values, err := LoadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", values["BASE_URL"])
	assert.Equal(t, "hello world", values["QUOTED"])
	assert.Equal(t, "single", values["SINGLE"])
	assert.NotContains(t, values, "NOEQUALS")
}
