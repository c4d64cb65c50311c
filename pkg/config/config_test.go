package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), DefaultConfigFile))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Equal(t, "packages/sections/src", cfg.Paths.SectionsRoot)
	assert.Equal(t, "apps/platform/src/pages", cfg.Paths.PagesRoot)
	assert.Equal(t, "packages/platform-test/POM/objects/widgets", cfg.Paths.Artifacts.WidgetInteractorRoot)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.LLM.Model)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 0.2, *cfg.LLM.Temperature)
	assert.Equal(t, "main", cfg.Generation.BaseBranch)
	assert.Contains(t, cfg.Generation.Categories, "credibleSet")
}

func TestLoadConfig_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`
paths:
  workspace: /repo
  artifacts:
    widget_tests: e2e
llm:
  provider: gemini
  model: gemini-2.5-pro
  temperature: 0
generation:
  base_branch: develop
  categories: [target]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/repo", cfg.Paths.Workspace)
	assert.Equal(t, "e2e", cfg.Paths.Artifacts.WidgetTestRoot)
	assert.Equal(t, "packages/platform-test/POM/page", cfg.Paths.Artifacts.PageInteractorRoot)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 0.0, *cfg.LLM.Temperature, "explicit zero is kept")
	assert.Equal(t, "develop", cfg.Generation.BaseBranch)
	assert.Equal(t, []string{"target"}, cfg.DetectorOptions().Categories)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("paths: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestWriteDefaultConfig_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, WriteDefaultConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Error(t, WriteDefaultConfig(path), "existing file is not overwritten")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAnthropicKey: "ant-key",
		EnvGeminiKey:    "gem-key",
		EnvModel:        "override-model",
	}
	getenv := func(k string) string { return env[k] }

	cfg := DefaultConfig()
	cfg.ApplyEnv(getenv)
	assert.Equal(t, "ant-key", cfg.LLM.APIKey)
	assert.Equal(t, "override-model", cfg.LLM.Model)
	assert.Equal(t, "override-model", cfg.GenerateOptions().Model)

	cfg = DefaultConfig()
	cfg.LLM.Provider = "gemini"
	cfg.ApplyEnv(getenv)
	assert.Equal(t, "gem-key", cfg.LLMOptions().APIKey)
}
