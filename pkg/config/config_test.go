package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", cfg.Model)
	assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	assert.NotEmpty(t, cfg.APIKey)
	assert.Equal(t, filepath.Join(DefaultDataDir(), "goals.json"), cfg.StorePath)
	assert.Equal(t, 120*time.Second, cfg.Timeout())
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `model: gpt-4o-mini
base_url: https://api.openai.com/v1
api_key: sk-test
store_path: /tmp/custom/goals.json
timeout_seconds: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "/tmp/custom/goals.json", cfg.StorePath)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadAPIKeyFile(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key.txt")
	require.NoError(t, os.WriteFile(keyPath, []byte("  sk-from-file\n"), 0600))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key_file: "+keyPath+"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cfg.APIKey)
}

func TestLoadAPIKeyFileMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key_file: "+filepath.Join(dir, "gone.txt")+"\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv("WAYLINE_CONFIG", "/custom/config.yaml")
	assert.Equal(t, "/custom/config.yaml", DefaultPath())
}
