package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swagsync/swagsync/config"
)

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.HandlersDir = "src/handlers"
	cfg.SwaggerFile = "api/swagger.yaml"

	applyOverrides(cfg, &commonFlags{
		handlers: "other/handlers",
		swagger:  "other/swagger.yaml",
		strict:   true,
	})

	assert.Equal(t, "other/handlers", cfg.HandlersDir)
	assert.Equal(t, "other/swagger.yaml", cfg.SwaggerFile)
	assert.True(t, cfg.Strict)
	assert.Empty(t, cfg.ModelsDir, "unset flags leave config values alone")
}

func TestApplyOverridesKeepsStrictFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Strict = true

	applyOverrides(cfg, &commonFlags{})

	assert.True(t, cfg.Strict)
}

func TestResolveConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swagsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("handlers: src/handlers\nswagger: api/swagger.yaml\n"), 0o644))

	cfg, err := resolveConfig(&commonFlags{configPath: path, modelsDir: "src/models"})
	require.NoError(t, err)

	assert.Equal(t, "src/handlers", cfg.HandlersDir)
	assert.Equal(t, "src/models", cfg.ModelsDir)
	assert.Equal(t, "text", cfg.Report.Format)
}

func TestResolveConfigRequiresHandlers(t *testing.T) {
	_, err := resolveConfig(&commonFlags{swagger: "api/swagger.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestSetupSyncFlags(t *testing.T) {
	fs, flags, dryRun, validateDoc := setupSyncFlags()
	require.NoError(t, fs.Parse([]string{"-handlers", "h", "--dry-run", "--validate"}))

	assert.Equal(t, "h", flags.handlers)
	assert.True(t, *dryRun)
	assert.True(t, *validateDoc)
}
