package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint64(1024), cfg.BloomBits)
	assert.Equal(t, StrategyOurs, cfg.MergeStrategy)
	assert.Equal(t, 20, cfg.LogLimit)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "author: ada\nbloom_bits: 4096\nmerge_strategy: theirs\nseed: 42\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ada", cfg.Author)
	assert.Equal(t, uint64(4096), cfg.BloomBits)
	assert.Equal(t, StrategyTheirs, cfg.MergeStrategy)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("author: ada\n"), 0o644))
	t.Setenv("GG_AUTHOR", "grace")
	t.Setenv("GG_LOG_LIMIT", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "grace", cfg.Author)
	assert.Equal(t, 5, cfg.LogLimit)
}

func TestLoadRejectsBadStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("merge_strategy: octopus\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Author = "linus"
	cfg.LogLevel = "debug"
	require.NoError(t, Write(path, cfg))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "linus", back.Author)
	assert.Equal(t, logrus.DebugLevel, back.Level())
}

func TestRandFollowsSeed(t *testing.T) {
	a := &Config{Seed: 42}
	b := &Config{Seed: 42}
	c := &Config{Seed: 43}

	ra, rb, rc := a.Rand(), b.Rand(), c.Rand()
	first := ra.Uint64()
	assert.Equal(t, first, rb.Uint64())
	assert.NotEqual(t, first, rc.Uint64())
}
