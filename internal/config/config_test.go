package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingDefaultFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Type != "file" || cfg.Storage.Path != "data/prompts.yaml" {
		t.Fatalf("storage defaults: %+v", cfg.Storage)
	}
	if cfg.LLM.DefaultProvider != "claude" {
		t.Fatalf("default provider: %q", cfg.LLM.DefaultProvider)
	}
	if cfg.Run.MaxTokens != 1024 {
		t.Fatalf("max tokens: %d", cfg.Run.MaxTokens)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load: expected error for missing explicit path")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
storage:
  type: sqlite
  path: data/prompts.db
llm:
  default_provider: openai
  providers:
    openai:
      api_key: key-from-file
      model: gpt-4o-mini
run:
  max_tokens: 256
  temperature: 0.2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.Path != "data/prompts.db" {
		t.Fatalf("storage: %+v", cfg.Storage)
	}
	if cfg.LLM.DefaultProvider != "openai" {
		t.Fatalf("default provider: %q", cfg.LLM.DefaultProvider)
	}
	p := cfg.LLM.Providers["openai"]
	if p.APIKey != "key-from-file" || p.Model != "gpt-4o-mini" {
		t.Fatalf("openai provider: %+v", p)
	}
	if cfg.Run.MaxTokens != 256 || cfg.Run.Temperature != 0.2 {
		t.Fatalf("run: %+v", cfg.Run)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  type: sqlite\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Type != "sqlite" {
		t.Fatalf("storage type: %q", cfg.Storage.Type)
	}
	if cfg.Storage.Path != "data/prompts.yaml" {
		t.Fatalf("storage path: %q", cfg.Storage.Path)
	}
	if cfg.Run.MaxTokens != 1024 {
		t.Fatalf("max tokens: %d", cfg.Run.MaxTokens)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: [unclosed"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected parse error")
	}
}

func TestLoad_EnvironmentKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-env-key")
	t.Setenv("OPENAI_API_KEY", "openai-env-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  providers:\n    claude:\n      api_key: from-file\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.LLM.Providers["claude"].APIKey; got != "anthropic-env-key" {
		t.Fatalf("claude key: %q", got)
	}
	if got := cfg.LLM.Providers["openai"].APIKey; got != "openai-env-key" {
		t.Fatalf("openai key: %q", got)
	}
}
