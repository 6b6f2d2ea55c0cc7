package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lifelens/internal/config"
)

func TestLoadDefaultConfigUsesEnvKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("LIFELENS_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "lifelens")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7488" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Fatalf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != config.Default().LLM.BaseURL {
		t.Fatalf("unexpected base url: %q", cfg.LLM.BaseURL)
	}
	if cfg.Store.Engine != config.EngineSQLite {
		t.Fatalf("expected sqlite engine by default, got %q", cfg.Store.Engine)
	}
	if cfg.StorePath() != filepath.Join(wantData, "records.db") {
		t.Fatalf("unexpected store path: %q", cfg.StorePath())
	}
	if cfg.Demo.Speed != 1 {
		t.Fatalf("expected demo speed 1, got %v", cfg.Demo.Speed)
	}
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("RequireLLM returned error: %v", err)
	}
}

func TestLoadReadsDotEnvWithoutExportingIt(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LIFELENS_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENROUTER_API_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "from-dotenv" {
		t.Fatalf("expected api key from .env, got %q", cfg.LLM.APIKey)
	}
	if value := os.Getenv("OPENROUTER_API_KEY"); value != "" {
		t.Fatalf("expected .env values to stay out of the process env, got %q", value)
	}
}

func TestLoadMissingAPIKeyIsNotFatal(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LIFELENS_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	err = cfg.RequireLLM()
	if err == nil {
		t.Fatal("expected RequireLLM to fail without a key")
	}
	if !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")

	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.LLM.APIKey = "file-key"
	cfg.LLM.AnalyzeModel = "  custom/model  "
	cfg.Store.Engine = "JSON"
	cfg.Demo.Speed = 4
	cfg.Logging.Format = "JSON"

	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if loaded.LLM.AnalyzeModel != "custom/model" {
		t.Fatalf("expected trimmed model, got %q", loaded.LLM.AnalyzeModel)
	}
	if loaded.Store.Engine != config.EngineJSON {
		t.Fatalf("expected json engine, got %q", loaded.Store.Engine)
	}
	if loaded.StorePath() != filepath.Join(base, "data", "records.json") {
		t.Fatalf("unexpected store path: %q", loaded.StorePath())
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", loaded.Logging.Format)
	}
	if loaded.Demo.Speed != 4 {
		t.Fatalf("expected demo speed 4, got %v", loaded.Demo.Speed)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"engine", func(c *config.Config) { c.Store.Engine = "redis" }, "store.engine"},
		{"speed", func(c *config.Config) { c.Demo.Speed = -1 }, "demo.speed"},
		{"base url", func(c *config.Config) { c.LLM.BaseURL = "not a url" }, "llm.base_url"},
		{"level", func(c *config.Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"timeout", func(c *config.Config) { c.LLM.TimeoutSeconds = 0 }, "llm.timeout_seconds"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			cfg.Paths.LogDir = t.TempDir()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.LLM.ClassifyModel != config.Default().LLM.ClassifyModel {
		t.Fatalf("unexpected classify model: %q", cfg.LLM.ClassifyModel)
	}
	if !cfg.Speech.Enabled {
		t.Fatal("expected speech enabled in sample")
	}
}
