package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/videolabels/internal/resolver"
)

func TestLoadPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadPath(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.AI.Endpoint)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, resolver.ExtrasKeepBoth, cfg.ExtrasPolicy())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Source = "/downloads"
	cfg.Target = "/library"
	cfg.Options.DryRun = true
	cfg.Options.Workers = 4
	cfg.Options.ExtrasDuplicatePolicy = string(resolver.ExtrasEscalate)
	cfg.AI.Model = "test-model"
	cfg.Watch.Enabled = true
	require.NoError(t, cfg.SavePath(path))

	loaded, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, "/downloads", loaded.Source)
	assert.Equal(t, "/library", loaded.Target)
	assert.True(t, loaded.Options.DryRun)
	assert.Equal(t, 4, loaded.Options.Workers)
	assert.Equal(t, resolver.ExtrasEscalate, loaded.ExtrasPolicy())
	assert.Equal(t, "test-model", loaded.AI.Model)
	assert.True(t, loaded.Watch.Enabled)
}

func TestLoadPathOverridesSubsetOfFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "source = \"/incoming\"\n\n[ai]\nmodel = \"other-model\"\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0644))

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, "/incoming", cfg.Source)
	assert.Equal(t, "other-model", cfg.AI.Model)
	// Untouched fields keep their defaults.
	assert.Equal(t, "http://localhost:11434", cfg.AI.Endpoint)
	assert.Equal(t, 10, cfg.Watch.SettleSeconds)
}

func TestClientConfig(t *testing.T) {
	cfg := DefaultConfig()
	cc := cfg.AI.ClientConfig()
	assert.Equal(t, cfg.AI.Endpoint, cc.Endpoint)
	assert.Equal(t, cfg.AI.Model, cc.Model)
	assert.Equal(t, cfg.AI.TimeoutSeconds, cc.TimeoutSeconds)
}
