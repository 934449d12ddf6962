package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h0rv/polardash/internal/domain"
)

// isolate points the working directory and user config dir at fresh temp dirs
// and clears the POLAR_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(originalWd) })
	require.NoError(t, os.Chdir(tmpDir))

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("POLAR_API_URL", "")
	t.Setenv("POLAR_TOKEN", "")
	t.Setenv("POLAR_NATS_URL", "")
	return tmpDir
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, domain.PlatformGitHub, cfg.Platform)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.Backoff)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Empty(t, cfg.Path)
}

func TestLoad_FindsFileInParentDir(t *testing.T) {
	tmpDir := isolate(t)

	content := `api_url: https://sandbox-api.polar.sh
nats_url: nats://localhost:4222
page_size: 50
retry:
  attempts: 5
  backoff: 2s
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(content), 0o644))

	sub := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.Chdir(sub))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox-api.polar.sh", cfg.APIURL)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.Backoff)
	assert.Equal(t, domain.PlatformGitHub, cfg.Platform, "unset keys keep defaults")

	resolved, err := filepath.EvalSymlinks(cfg.Path)
	require.NoError(t, err)
	expected, err := filepath.EvalSymlinks(filepath.Join(tmpDir, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, expected, resolved)
}

func TestLoad_UserConfigDir(t *testing.T) {
	tmpDir := isolate(t)

	dir := filepath.Join(tmpDir, "xdg", AppName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("token: polar_pat_file\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "polar_pat_file", cfg.Token)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://file.example\ntoken: from-file\n"), 0o600))

	t.Setenv("POLAR_API_URL", "https://env.example")
	t.Setenv("POLAR_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", cfg.APIURL)
	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, path, cfg.Path)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	isolate(t)
	_, err := Load("does-not-exist.yml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("retry: [unclosed"), 0o644))

	_, err := Load("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"relative url", func(c *Config) { c.APIURL = "api.polar.sh" }, "invalid api_url"},
		{"empty url", func(c *Config) { c.APIURL = "" }, "api_url is required"},
		{"platform", func(c *Config) { c.Platform = "gitlab" }, "unsupported platform"},
		{"attempts", func(c *Config) { c.Retry.Attempts = 0 }, "retry.attempts"},
		{"backoff", func(c *Config) { c.Retry.Backoff = -time.Second }, "retry.backoff"},
		{"page size", func(c *Config) { c.PageSize = -1 }, "page_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, "nested", ConfigFileName)

	cfg := Default()
	cfg.NATSURL = "nats://events.polar.sh:4222"
	cfg.Retry.Backoff = time.Second
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.NATSURL, loaded.NATSURL)
	assert.Equal(t, time.Second, loaded.Retry.Backoff)
}
