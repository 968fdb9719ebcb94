package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Amarendra0207/Agentic-Travel/internal/config"
	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
	"github.com/Amarendra0207/Agentic-Travel/pkg/audit"
)

func testConfig() *config.Configuration {
	return &config.Configuration{
		Model:  &config.ModelConfig{Provider: "scripted"},
		Agent:  &config.AgentConfig{MaxTurns: 7, ToolParallelism: 2, ToolTimeout: time.Second},
		Tools:  &config.ToolsConfig{HTTPTimeout: time.Second},
		Server: &config.ServerConfig{Addr: ":0"},
		Audit:  &config.AuditConfig{},
		Cache:  &config.CacheConfig{Size: 16, ToolTTL: time.Minute, RateTTL: time.Minute},
	}
}

func providerNames(ps []agent.ToolProvider) []string {
	var names []string
	for _, p := range ps {
		names = append(names, p.Name())
	}
	return names
}

func TestToolProvidersWithoutKeys(t *testing.T) {
	providers, skipped := ToolProviders(testConfig())
	names := providerNames(providers)
	if len(names) != 2 || names[0] != "distance" || names[1] != "calculator" {
		t.Fatalf("unexpected providers %v", names)
	}
	if len(skipped) != 4 {
		t.Fatalf("expected 4 skip reasons, got %v", skipped)
	}
}

func TestToolProvidersWithKeys(t *testing.T) {
	cfg := testConfig()
	cfg.Tools.WeatherKey = "w"
	cfg.Tools.TavilyKey = "t"
	cfg.Tools.ExchangeRateKey = "x"
	cfg.Tools.OpenRouteKey = "o"
	providers, skipped := ToolProviders(cfg)
	if len(providers) != 5 || len(skipped) != 0 {
		t.Fatalf("unexpected providers %v skipped %v", providerNames(providers), skipped)
	}
	catalog, err := agent.NewToolCatalog(providers...)
	if err != nil {
		t.Fatalf("NewToolCatalog returned error: %v", err)
	}
	for _, name := range []string{"get_current_weather", "search_attractions", "convert_currency", "calculate_driving_distance", "add"} {
		if _, _, ok := catalog.Lookup(name); !ok {
			t.Fatalf("catalog is missing %s", name)
		}
	}
}

func TestBuildWithScriptedModel(t *testing.T) {
	a, err := Build(context.Background(), testConfig(), nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	defer a.Close(context.Background())

	if _, ok := a.Sink.(audit.NopSink); !ok {
		t.Fatalf("expected NopSink without audit config, got %T", a.Sink)
	}
	if a.Agent.MaxTurns() != 7 || a.Agent.ModelName() != "scripted" {
		t.Fatalf("unexpected agent %d %s", a.Agent.MaxTurns(), a.Agent.ModelName())
	}
	res, err := a.Agent.Run(context.Background(), agent.PostureCheapest, "hello")
	if err != nil || res.Status != agent.StatusCompleted || res.FinalText != "hello" {
		t.Fatalf("unexpected run %+v %v", res, err)
	}
}

func TestBuildRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Model.Provider = "nope"
	if _, err := Build(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadInstructions(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("cheapest: be frugal\nluxurious: be lavish\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadInstructions(good)
	if err != nil {
		t.Fatalf("LoadInstructions returned error: %v", err)
	}
	if got[agent.PostureCheapest] != "be frugal" || len(got) != 2 {
		t.Fatalf("unexpected instructions %v", got)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("stingy: nope\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadInstructions(bad); err == nil {
		t.Fatalf("expected unknown posture error")
	}
	if m, err := LoadInstructions(""); err != nil || m != nil {
		t.Fatalf("empty path should yield nothing, got %v %v", m, err)
	}
}
