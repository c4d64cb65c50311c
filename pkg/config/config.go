// Package config loads testgen.yaml and maps it onto the options of the
// detection and generation packages.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-testgen/pkg/detect"
	"github.com/mattsolo1/grove-testgen/pkg/generate"
	"github.com/mattsolo1/grove-testgen/pkg/llm"
)

// DefaultConfigFile is the conventional configuration filename.
const DefaultConfigFile = "testgen.yaml"

// Environment variables consulted by ApplyEnv.
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvModel        = "TESTGEN_MODEL"
)

// PathsConfig locates sources and generated artifacts, relative to Workspace.
type PathsConfig struct {
	// Workspace is the monorepo root (default ".").
	Workspace string `yaml:"workspace"`

	// SectionsRoot holds widget sources as <category>/<Name>/.
	SectionsRoot string `yaml:"sections_root"`

	// PagesRoot holds page sources as <PageName>/.
	PagesRoot string `yaml:"pages_root"`

	// Fixtures is the Playwright test config shown to the model.
	Fixtures string `yaml:"fixtures"`

	Artifacts detect.ArtifactLayout `yaml:"artifacts"`
	UI        detect.UIRoots        `yaml:"ui"`
}

// LLMConfig selects and tunes the text-generation provider.
type LLMConfig struct {
	// Provider is "anthropic" (default) or "gemini".
	Provider string `yaml:"provider"`

	Model             string `yaml:"model"`
	MaxTokens         int    `yaml:"max_tokens"`
	AnalysisMaxTokens int    `yaml:"analysis_max_tokens"`

	// Temperature defaults to 0.2; a pointer keeps an explicit 0 distinct.
	Temperature *float64 `yaml:"temperature"`

	// APIKey is normally left empty and supplied through the environment.
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// GenerationConfig holds run behavior.
type GenerationConfig struct {
	// BaseBranch is diffed against HEAD to find added files (default "main").
	BaseBranch string `yaml:"base_branch"`

	// Categories restricts widget detection to these entity directories.
	Categories []string `yaml:"categories"`

	SkipTestHooks bool `yaml:"skip_test_hooks"`
	DryRun        bool `yaml:"dry_run"`
}

// Config holds all settings.
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Paths.Workspace == "" {
		c.Paths.Workspace = "."
	}
	if c.Paths.SectionsRoot == "" {
		c.Paths.SectionsRoot = "packages/sections/src"
	}
	if c.Paths.PagesRoot == "" {
		c.Paths.PagesRoot = "apps/platform/src/pages"
	}
	if c.Paths.Fixtures == "" {
		c.Paths.Fixtures = "packages/platform-test/fixtures/testConfig.ts"
	}

	layout := detect.DefaultArtifactLayout()
	a := &c.Paths.Artifacts
	if a.WidgetInteractorRoot == "" {
		a.WidgetInteractorRoot = layout.WidgetInteractorRoot
	}
	if a.WidgetTestRoot == "" {
		a.WidgetTestRoot = layout.WidgetTestRoot
	}
	if a.PageInteractorRoot == "" {
		a.PageInteractorRoot = layout.PageInteractorRoot
	}
	if a.PageTestRoot == "" {
		a.PageTestRoot = layout.PageTestRoot
	}

	roots := detect.DefaultUIRoots()
	if c.Paths.UI.Components == "" {
		c.Paths.UI.Components = roots.Components
	}
	if c.Paths.UI.Providers == "" {
		c.Paths.UI.Providers = roots.Providers
	}
	if c.Paths.UI.Hooks == "" {
		c.Paths.UI.Hooks = roots.Hooks
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = llm.ProviderAnthropic
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "claude-sonnet-4-20250514"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.LLM.AnalysisMaxTokens == 0 {
		c.LLM.AnalysisMaxTokens = generate.DefaultAnalysisMaxTokens
	}
	if c.LLM.Temperature == nil {
		t := 0.2
		c.LLM.Temperature = &t
	}

	if c.Generation.BaseBranch == "" {
		c.Generation.BaseBranch = "main"
	}
	if len(c.Generation.Categories) == 0 {
		c.Generation.Categories = append([]string(nil), detect.Categories...)
	}
}

// LoadConfig reads a configuration file. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// WriteDefaultConfig writes a config file with all defaults filled in.
// It refuses to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshalling default config: %w", err)
	}

	header := "# testgen configuration. API keys are read from " + EnvAnthropicKey + " or " + EnvGeminiKey + ".\n\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// ApplyEnv overlays environment settings. getenv is os.Getenv outside tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if m := getenv(EnvModel); m != "" {
		c.LLM.Model = m
	}
	key := EnvAnthropicKey
	if strings.EqualFold(c.LLM.Provider, llm.ProviderGemini) {
		key = EnvGeminiKey
	}
	if v := getenv(key); v != "" {
		c.LLM.APIKey = v
	}
}

// DetectorOptions maps the config onto detection options.
func (c Config) DetectorOptions() detect.Options {
	return detect.Options{
		Workspace:    c.Paths.Workspace,
		SectionsRoot: c.Paths.SectionsRoot,
		PagesRoot:    c.Paths.PagesRoot,
		Categories:   c.Generation.Categories,
		Layout:       c.Paths.Artifacts,
	}
}

// LLMOptions maps the config onto client options.
func (c Config) LLMOptions() llm.Options {
	return llm.Options{
		Provider:    c.LLM.Provider,
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		MaxTokens:   c.LLM.MaxTokens,
		Temperature: *c.LLM.Temperature,
		BaseURL:     c.LLM.BaseURL,
	}
}

// GenerateOptions maps the config onto orchestrator options.
func (c Config) GenerateOptions() generate.Options {
	return generate.Options{
		Workspace:         c.Paths.Workspace,
		Layout:            c.Paths.Artifacts,
		UIRoots:           c.Paths.UI,
		FixturesPath:      c.Paths.Fixtures,
		Model:             c.LLM.Model,
		MaxTokens:         c.LLM.MaxTokens,
		AnalysisMaxTokens: c.LLM.AnalysisMaxTokens,
		DryRun:            c.Generation.DryRun,
		SkipTestHooks:     c.Generation.SkipTestHooks,
	}
}
