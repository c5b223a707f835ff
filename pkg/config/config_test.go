package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	App    App    `mapstructure:"app"`
	Logger Logger `mapstructure:"logger"`
	API    API    `mapstructure:"api"`
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: analyzer\nlogger:\n  level: debug\n"), 0o600))

	var cfg testConfig
	err := Load(path, &cfg, map[string]interface{}{
		"api.port":        8080,
		"logger.encoding": "json",
	})
	require.NoError(t, err)

	assert.Equal(t, "analyzer", cfg.App.Name)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	var cfg testConfig
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg, map[string]interface{}{"api.port": 9000})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.API.Port)
}
