// Package app assembles a ready-to-run planner from a Configuration: model binding, tool
// providers, result cache and transcript sinks.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Amarendra0207/Agentic-Travel/internal/config"
	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
	"github.com/Amarendra0207/Agentic-Travel/pkg/audit"
	"github.com/Amarendra0207/Agentic-Travel/pkg/cache"
	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
	"github.com/Amarendra0207/Agentic-Travel/pkg/tools"
)

// App owns the agent and everything that must be closed with it.
type App struct {
	Agent *agent.Agent
	Sink  audit.Sink
}

// Build wires every component named by cfg. Tool providers whose API key is missing are skipped
// with a warning, so a partially configured deployment still starts.
func Build(ctx context.Context, cfg *config.Configuration, logger *zap.SugaredLogger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	model, err := models.NewChatModel(ctx, cfg.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	providers, skipped := ToolProviders(cfg)
	for _, reason := range skipped {
		logger.Warnw("tool provider disabled", "reason", reason)
	}

	instructions, err := LoadInstructions(cfg.Agent.Instructions)
	if err != nil {
		return nil, err
	}

	sink, err := AuditSink(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a, err := agent.New(agent.Options{
		Model:           model,
		Providers:       providers,
		MaxTurns:        cfg.Agent.MaxTurns,
		ToolParallelism: cfg.Agent.ToolParallelism,
		ToolTimeout:     cfg.Agent.ToolTimeout,
		Instructions:    instructions,
		Logger:          logger,
		OnComplete:      audit.Hook(sink, logger, cfg.Audit.Timeout),
	})
	if err != nil {
		_ = sink.Close(ctx)
		return nil, err
	}
	return &App{Agent: a, Sink: sink}, nil
}

func (a *App) Close(ctx context.Context) error {
	if a == nil || a.Sink == nil {
		return nil
	}
	return a.Sink.Close(ctx)
}

// ToolProviders builds the tool providers that cfg has keys for. The calculator and the
// straight-line distance tool need no key and are always present.
func ToolProviders(cfg *config.Configuration) ([]agent.ToolProvider, []string) {
	t := cfg.Tools
	httpClient := &http.Client{Timeout: t.HTTPTimeout}

	var resultCache *cache.LRUCache[string]
	if cfg.Cache.ToolTTL > 0 {
		resultCache = cache.NewLRUCache[string](cfg.Cache.Size, cfg.Cache.ToolTTL)
	}

	var (
		providers []agent.ToolProvider
		skipped   []string
	)
	if weather, err := tools.NewWeatherTools(tools.WeatherConfig{
		APIKey: t.WeatherKey, BaseURL: t.WeatherURL, HTTPClient: httpClient, ForecastCount: t.ForecastCount,
	}); err == nil {
		providers = append(providers, tools.CachedProvider(weather, resultCache))
	} else {
		skipped = append(skipped, err.Error())
	}

	if places, err := tools.NewPlaceSearchTools(tools.PlaceSearchConfig{
		APIKey: t.TavilyKey, HTTPClient: httpClient, MaxResults: t.SearchResults,
	}); err == nil {
		providers = append(providers, tools.CachedProvider(places, resultCache))
	} else {
		skipped = append(skipped, err.Error())
	}

	if currency, err := tools.NewCurrencyTools(tools.CurrencyConfig{
		APIKey: t.ExchangeRateKey, HTTPClient: httpClient, RateTTL: cfg.Cache.RateTTL,
	}); err == nil {
		providers = append(providers, currency)
	} else {
		skipped = append(skipped, err.Error())
	}

	if t.OpenRouteKey == "" {
		skipped = append(skipped, "distance: openroute api key not set, driving distances disabled")
	}
	providers = append(providers,
		tools.CachedProvider(tools.NewDistanceTools(tools.DistanceConfig{APIKey: t.OpenRouteKey, HTTPClient: httpClient}), resultCache),
		tools.CalculatorTools{},
	)
	return providers, skipped
}

// AuditSink opens every configured transcript store. With none configured it returns a NopSink.
func AuditSink(ctx context.Context, cfg *config.Configuration) (audit.Sink, error) {
	a := cfg.Audit
	var sinks audit.MultiSink
	fail := func(err error) (audit.Sink, error) {
		_ = sinks.Close(ctx)
		return nil, err
	}

	if a.PostgresURL != "" {
		ps, err := audit.NewPostgresSink(ctx, a.PostgresURL)
		if err != nil {
			return fail(fmt.Errorf("audit postgres: %w", err))
		}
		sinks = append(sinks, ps)
	}
	if a.MongoURI != "" {
		ms, err := audit.NewMongoSink(ctx, a.MongoURI, a.MongoDatabase, a.MongoCollection)
		if err != nil {
			return fail(fmt.Errorf("audit mongo: %w", err))
		}
		sinks = append(sinks, ms)
	}
	if a.Neo4jURI != "" {
		ns, err := audit.NewNeo4jSink(ctx, a.Neo4jURI, a.Neo4jUser, a.Neo4jPassword, a.Neo4jDatabase)
		if err != nil {
			return fail(fmt.Errorf("audit neo4j: %w", err))
		}
		sinks = append(sinks, ns)
	}

	switch len(sinks) {
	case 0:
		return audit.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}

// LoadInstructions reads a YAML file mapping postures to system instructions, e.g.
//
//	cheapest: |
//	  You are a frugal travel planner...
//
// Unknown postures are rejected. An empty path yields no overrides.
func LoadInstructions(path string) (map[agent.BudgetPosture]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("instructions: %w", err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("instructions %s: %w", path, err)
	}
	out := make(map[agent.BudgetPosture]string, len(raw))
	for key, text := range raw {
		p := agent.BudgetPosture(key)
		if !p.Valid() {
			return nil, fmt.Errorf("instructions %s: unknown budget posture %q", path, key)
		}
		out[p] = text
	}
	if len(out) == 0 {
		return nil, errors.New("instructions " + path + ": no postures defined")
	}
	return out, nil
}
