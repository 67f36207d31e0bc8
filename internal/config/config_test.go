package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
bot_name: aria
embedding:
  model_name: text-embedding-3-small
llm:
  provider: openai
  model: gpt-4o-mini
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Vector.Dim != 384 {
		t.Fatalf("expected default vector dim 384, got %d", cfg.Vector.Dim)
	}
	if cfg.Vector.CollectionName != "whisperengine_memory_aria" {
		t.Fatalf("expected derived collection name, got %q", cfg.Vector.CollectionName)
	}
	if cfg.AutonomousPostCooldownMinutes != 10 {
		t.Fatalf("expected default cooldown 10, got %d", cfg.AutonomousPostCooldownMinutes)
	}
}

func TestLoadFailsOnMissingRequiredKeys(t *testing.T) {
	path := writeTempConfig(t, `
vector:
  host: localhost
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing bot_name/embedding/llm")
	}
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	path := writeTempConfig(t, `
bot_name: aria
embedding:
  model_name: text-embedding-3-small
llm:
  provider: openai
  model: gpt-4o-mini
  key: file-key
`)
	t.Setenv("WHISPERENGINE_LLM_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Key != "env-key" {
		t.Fatalf("expected env override to win, got %q", cfg.LLM.Key)
	}
}
