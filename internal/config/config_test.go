package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
)

func parse(t *testing.T, data map[string]any, args ...string) *Configuration {
	t.Helper()
	var cfg *Configuration
	cmd := &cli.Command{
		Name:  "travel-agent",
		Flags: flagsFor(data),
		Action: func(_ context.Context, c *cli.Command) error {
			cfg = NewConfiguration(c)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"travel-agent"}, args...)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := parse(t, nil)
	if cfg.Model.Provider != "groq" || cfg.Agent.MaxTurns != 25 || cfg.Agent.ToolParallelism != 4 {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Model, cfg.Agent)
	}
	if cfg.Server.Addr != ":8000" || cfg.Cache.RateTTL != time.Hour {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Server, cfg.Cache)
	}
	if cfg.AuditEnabled() {
		t.Fatalf("audit should be disabled by default")
	}
}

func TestSourcePrecedence(t *testing.T) {
	yamlData := map[string]any{"provider": "anthropic", "maxturns": 12, "model": "from-yaml", "ratettl": "30m"}

	cfg := parse(t, yamlData)
	if cfg.Model.Provider != "anthropic" || cfg.Agent.MaxTurns != 12 || cfg.Cache.RateTTL != 30*time.Minute {
		t.Fatalf("yaml should override defaults: %+v", cfg.Model)
	}

	t.Setenv("TRAVEL_AGENT_PROVIDER", "openai")
	cfg = parse(t, yamlData)
	if cfg.Model.Provider != "openai" {
		t.Fatalf("env should override yaml, got %s", cfg.Model.Provider)
	}

	cfg = parse(t, yamlData, "--provider", "ollama", "--maxturns", "3")
	if cfg.Model.Provider != "ollama" || cfg.Agent.MaxTurns != 3 || cfg.Model.Model != "from-yaml" {
		t.Fatalf("flags should override env and yaml: %+v %+v", cfg.Model, cfg.Agent)
	}
}

func TestLegacyEnvNames(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-legacy")
	t.Setenv("TAVILY_API_KEY", "tvly-legacy")
	cfg := parse(t, nil)
	if cfg.Model.GroqKey != "gsk-legacy" || cfg.Tools.TavilyKey != "tvly-legacy" {
		t.Fatalf("legacy env names not honoured: %+v %+v", cfg.Model, cfg.Tools)
	}
	if pc := cfg.ProviderConfig(); pc.APIKey != "gsk-legacy" || pc.Provider != "groq" {
		t.Fatalf("unexpected provider config %+v", pc)
	}
}

func TestProviderConfigOllamaUsesOllamaURL(t *testing.T) {
	cfg := parse(t, nil, "--provider", "Ollama", "--ollamakey", "ok")
	pc := cfg.ProviderConfig()
	if pc.Provider != "ollama" || pc.BaseURL != "http://localhost:11434" || pc.APIKey != "ok" {
		t.Fatalf("unexpected provider config %+v", pc)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("TRAVEL_AGENT_CONFIG", "")
	if got := getConfigPath([]string{"serve", "--config", "a.yaml"}); got != "a.yaml" {
		t.Fatalf("unexpected path %q", got)
	}
	if got := getConfigPath([]string{"--config=b.yaml"}); got != "b.yaml" {
		t.Fatalf("unexpected path %q", got)
	}
	t.Setenv("TRAVEL_AGENT_CONFIG", "env.yaml")
	if got := getConfigPath([]string{"--config", "a.yaml"}); got != "env.yaml" {
		t.Fatalf("env should win, got %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: gemini\nverbose: true\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := parse(t, loadYAML(path))
	if cfg.Model.Provider != "gemini" || !cfg.Verbose {
		t.Fatalf("yaml file not applied: %+v", cfg.Model)
	}
	if loadYAML(filepath.Join(t.TempDir(), "missing.yaml")) != nil {
		t.Fatalf("missing file should yield nil data")
	}
}

func TestPrintConfigMasksSecrets(t *testing.T) {
	cfg := parse(t, nil, "--openaikey", "sk-secret-abc", "--neo4jpassword", "hunter2")
	var buf bytes.Buffer
	cfg.PrintConfig(&buf)
	out := buf.String()
	if strings.Contains(out, "sk-secret-abc") || strings.Contains(out, "hunter2") {
		t.Fatalf("secrets leaked:\n%s", out)
	}
	if !strings.Contains(out, "openaikey: **********abc") {
		t.Fatalf("expected masked key:\n%s", out)
	}
}
