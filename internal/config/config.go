package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

const (
	envPrefix         = "TRAVEL_AGENT_"
	defaultConfigPath = "config/config.yaml"
)

type Configuration struct {
	Verbose bool
	Model   *ModelConfig
	Agent   *AgentConfig
	Tools   *ToolsConfig
	Server  *ServerConfig
	Audit   *AuditConfig
	Cache   *CacheConfig
}

type ModelConfig struct {
	Provider     string
	Model        string
	MaxTokens    int
	Timeout      time.Duration
	BaseURL      string
	GroqKey      string
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string
	OllamaURL    string
	OllamaKey    string
}

type AgentConfig struct {
	MaxTurns        int
	ToolParallelism int
	ToolTimeout     time.Duration
	RunTimeout      time.Duration
	Instructions    string
}

type ToolsConfig struct {
	WeatherKey      string
	WeatherURL      string
	ForecastCount   int
	TavilyKey       string
	SearchResults   int
	ExchangeRateKey string
	OpenRouteKey    string
	HTTPTimeout     time.Duration
}

type ServerConfig struct {
	Addr    string
	GinMode string
}

type AuditConfig struct {
	PostgresURL     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	Neo4jURI        string
	Neo4jUser       string
	Neo4jPassword   string
	Neo4jDatabase   string
	Timeout         time.Duration
}

type CacheConfig struct {
	Size    int
	ToolTTL time.Duration
	RateTTL time.Duration
}

// YamlSource implements cli.ValueSource for a map loaded from YAML
type YamlSource struct {
	data map[string]any
	key  string
}

func (y *YamlSource) Lookup() (string, bool) {
	if v, ok := y.data[y.key]; ok && v != nil {
		if slice, ok := v.([]any); ok {
			var strs []string
			for _, item := range slice {
				strs = append(strs, fmt.Sprintf("%v", item))
			}
			return strings.Join(strs, ","), true
		}
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}

func (y *YamlSource) String() string   { return "yaml" }
func (y *YamlSource) GoString() string { return "yaml" }

// GetFlags builds the global flags. Every flag resolves env var first, then the YAML key, then its default.
func GetFlags() []cli.Flag {
	return flagsFor(loadYAML(getConfigPath(os.Args[1:])))
}

func loadYAML(path string) map[string]any {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", path, err)
		return nil
	}
	var configData map[string]any
	if err := yaml.Unmarshal(data, &configData); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to parse config file %s: %v\n", path, err)
		return nil
	}
	return configData
}

func flagsFor(configData map[string]any) []cli.Flag {
	src := func(key string, env ...string) cli.ValueSourceChain {
		chain := cli.ValueSourceChain{}
		chain.Chain = append(chain.Chain, cli.EnvVar(envPrefix+strings.ToUpper(key)))
		for _, e := range env {
			chain.Chain = append(chain.Chain, cli.EnvVar(e))
		}
		if configData != nil {
			chain.Chain = append(chain.Chain, &YamlSource{data: configData, key: key})
		}
		return chain
	}

	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "use the named configuration file", Sources: cli.EnvVars(envPrefix + "CONFIG")},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "enable debug logging", Sources: src("verbose")},

		// Model
		&cli.StringFlag{Name: "provider", Value: "groq", Usage: "model provider: groq, openai, anthropic, gemini, ollama or scripted", Sources: src("provider")},
		&cli.StringFlag{Name: "model", Usage: "model name; empty selects the provider default", Sources: src("model")},
		&cli.IntFlag{Name: "maxtokens", Value: 2048, Usage: "maximum number of tokens per model reply", Sources: src("maxtokens")},
		&cli.DurationFlag{Name: "apitimeout", Value: 2 * time.Minute, Usage: "timeout for each model request", Sources: src("apitimeout")},
		&cli.StringFlag{Name: "modelurl", Usage: "override the provider base URL", Sources: src("modelurl")},
		&cli.StringFlag{Name: "groqkey", Usage: "Groq API key", Sources: src("groqkey", "GROQ_API_KEY")},
		&cli.StringFlag{Name: "openaikey", Usage: "OpenAI API key", Sources: src("openaikey", "OPENAI_API_KEY")},
		&cli.StringFlag{Name: "anthropickey", Usage: "Anthropic API key", Sources: src("anthropickey", "ANTHROPIC_API_KEY")},
		&cli.StringFlag{Name: "geminikey", Usage: "Google Gemini API key", Sources: src("geminikey", "GOOGLE_API_KEY")},
		&cli.StringFlag{Name: "ollamaurl", Value: "http://localhost:11434", Usage: "Ollama API URL", Sources: src("ollamaurl")},
		&cli.StringFlag{Name: "ollamakey", Usage: "Ollama API key (Bearer token for hosted endpoints)", Sources: src("ollamakey")},

		// Agent loop
		&cli.IntFlag{Name: "maxturns", Value: 25, Usage: "maximum model invocations per request", Sources: src("maxturns")},
		&cli.IntFlag{Name: "toolparallelism", Value: 4, Usage: "tool calls dispatched concurrently per turn", Sources: src("toolparallelism")},
		&cli.DurationFlag{Name: "tooltimeout", Value: 30 * time.Second, Usage: "timeout for a single tool call (0 disables)", Sources: src("tooltimeout")},
		&cli.DurationFlag{Name: "runtimeout", Value: 5 * time.Minute, Usage: "deadline for a whole request (0 disables)", Sources: src("runtimeout")},
		&cli.StringFlag{Name: "instructions", Usage: "file replacing the built-in system instructions", Sources: src("instructions")},

		// Tools
		&cli.StringFlag{Name: "weatherkey", Usage: "OpenWeatherMap API key", Sources: src("weatherkey", "WEATHER_API_KEY")},
		&cli.StringFlag{Name: "weatherurl", Usage: "OpenWeatherMap base URL", Sources: src("weatherurl", "WEATHER_BASE_URL")},
		&cli.IntFlag{Name: "forecastcount", Value: 10, Usage: "3-hour slots returned by the forecast tool", Sources: src("forecastcount")},
		&cli.StringFlag{Name: "tavilykey", Usage: "Tavily search API key", Sources: src("tavilykey", "TAVILY_API_KEY")},
		&cli.IntFlag{Name: "searchresults", Value: 5, Usage: "results requested per place search", Sources: src("searchresults")},
		&cli.StringFlag{Name: "exchangeratekey", Usage: "ExchangeRate-API key", Sources: src("exchangeratekey", "EXCHANGE_RATE_API_KEY")},
		&cli.StringFlag{Name: "openroutekey", Usage: "OpenRouteService API key; enables driving distances", Sources: src("openroutekey", "OPENROUTE_API_KEY")},
		&cli.DurationFlag{Name: "tooltransporttimeout", Value: 30 * time.Second, Usage: "HTTP timeout of the remote tool APIs", Sources: src("tooltransporttimeout")},

		// Cache
		&cli.IntFlag{Name: "cachesize", Value: 256, Usage: "entries kept by the tool result cache", Sources: src("cachesize")},
		&cli.DurationFlag{Name: "cachettl", Value: 10 * time.Minute, Usage: "lifetime of cached tool results (0 disables the cache)", Sources: src("cachettl")},
		&cli.DurationFlag{Name: "ratettl", Value: time.Hour, Usage: "lifetime of cached exchange rates (0 disables)", Sources: src("ratettl")},

		// Server
		&cli.StringFlag{Name: "addr", Value: ":8000", Usage: "HTTP listen address", Sources: src("addr")},
		&cli.StringFlag{Name: "ginmode", Value: "release", Usage: "gin mode: debug, release or test", Sources: src("ginmode")},

		// Audit
		&cli.StringFlag{Name: "postgresurl", Usage: "Postgres connection string for run transcripts", Sources: src("postgresurl")},
		&cli.StringFlag{Name: "mongouri", Usage: "MongoDB URI for run transcripts", Sources: src("mongouri")},
		&cli.StringFlag{Name: "mongodatabase", Value: "travel_agent", Usage: "MongoDB database", Sources: src("mongodatabase")},
		&cli.StringFlag{Name: "mongocollection", Value: "run_transcripts", Usage: "MongoDB collection", Sources: src("mongocollection")},
		&cli.StringFlag{Name: "neo4juri", Usage: "Neo4j URI for the run/tool graph", Sources: src("neo4juri")},
		&cli.StringFlag{Name: "neo4juser", Value: "neo4j", Usage: "Neo4j user", Sources: src("neo4juser")},
		&cli.StringFlag{Name: "neo4jpassword", Usage: "Neo4j password", Sources: src("neo4jpassword")},
		&cli.StringFlag{Name: "neo4jdatabase", Usage: "Neo4j database (empty for the default)", Sources: src("neo4jdatabase")},
		&cli.DurationFlag{Name: "audittimeout", Value: 5 * time.Second, Usage: "timeout for writing one audit record", Sources: src("audittimeout")},
	}
}

func getConfigPath(args []string) string {
	if v := os.Getenv(envPrefix + "CONFIG"); v != "" {
		return v
	}
	for i, arg := range args {
		if arg == "--config" || arg == "-c" {
			if i+1 < len(args) {
				return args[i+1]
			}
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

func NewConfiguration(c *cli.Command) *Configuration {
	if c.IsSet("config") {
		zap.S().Infow("using config file", "path", c.String("config"))
	}

	return &Configuration{
		Verbose: c.Bool("verbose"),
		Model: &ModelConfig{
			Provider:     strings.ToLower(c.String("provider")),
			Model:        c.String("model"),
			MaxTokens:    c.Int("maxtokens"),
			Timeout:      c.Duration("apitimeout"),
			BaseURL:      c.String("modelurl"),
			GroqKey:      c.String("groqkey"),
			OpenAIKey:    c.String("openaikey"),
			AnthropicKey: c.String("anthropickey"),
			GeminiKey:    c.String("geminikey"),
			OllamaURL:    c.String("ollamaurl"),
			OllamaKey:    c.String("ollamakey"),
		},
		Agent: &AgentConfig{
			MaxTurns:        c.Int("maxturns"),
			ToolParallelism: c.Int("toolparallelism"),
			ToolTimeout:     c.Duration("tooltimeout"),
			RunTimeout:      c.Duration("runtimeout"),
			Instructions:    c.String("instructions"),
		},
		Tools: &ToolsConfig{
			WeatherKey:      c.String("weatherkey"),
			WeatherURL:      c.String("weatherurl"),
			ForecastCount:   c.Int("forecastcount"),
			TavilyKey:       c.String("tavilykey"),
			SearchResults:   c.Int("searchresults"),
			ExchangeRateKey: c.String("exchangeratekey"),
			OpenRouteKey:    c.String("openroutekey"),
			HTTPTimeout:     c.Duration("tooltransporttimeout"),
		},
		Server: &ServerConfig{
			Addr:    c.String("addr"),
			GinMode: c.String("ginmode"),
		},
		Audit: &AuditConfig{
			PostgresURL:     c.String("postgresurl"),
			MongoURI:        c.String("mongouri"),
			MongoDatabase:   c.String("mongodatabase"),
			MongoCollection: c.String("mongocollection"),
			Neo4jURI:        c.String("neo4juri"),
			Neo4jUser:       c.String("neo4juser"),
			Neo4jPassword:   c.String("neo4jpassword"),
			Neo4jDatabase:   c.String("neo4jdatabase"),
			Timeout:         c.Duration("audittimeout"),
		},
		Cache: &CacheConfig{
			Size:    c.Int("cachesize"),
			ToolTTL: c.Duration("cachettl"),
			RateTTL: c.Duration("ratettl"),
		},
	}
}

// ProviderConfig selects the key and base URL matching the configured provider.
func (c *Configuration) ProviderConfig() models.ProviderConfig {
	m := c.Model
	pc := models.ProviderConfig{
		Provider:  m.Provider,
		Model:     m.Model,
		BaseURL:   m.BaseURL,
		MaxTokens: m.MaxTokens,
		Timeout:   m.Timeout,
	}
	switch m.Provider {
	case "groq":
		pc.APIKey = m.GroqKey
	case "openai":
		pc.APIKey = m.OpenAIKey
	case "anthropic", "claude":
		pc.APIKey = m.AnthropicKey
	case "gemini", "google":
		pc.APIKey = m.GeminiKey
	case "ollama":
		pc.APIKey = m.OllamaKey
		if pc.BaseURL == "" {
			pc.BaseURL = m.OllamaURL
		}
	}
	return pc
}

// AuditEnabled reports whether any transcript sink is configured.
func (c *Configuration) AuditEnabled() bool {
	a := c.Audit
	return a.PostgresURL != "" || a.MongoURI != "" || a.Neo4jURI != ""
}

func mask(secret string) string {
	if len(secret) > 3 {
		return strings.Repeat("*", len(secret)-3) + secret[len(secret)-3:]
	}
	return secret
}

func (c *Configuration) PrintConfig(w io.Writer) {
	fmt.Fprintf(w, "verbose: %t\n", c.Verbose)
	fmt.Fprintf(w, "provider: %s\n", c.Model.Provider)
	fmt.Fprintf(w, "model: %s\n", c.Model.Model)
	fmt.Fprintf(w, "maxtokens: %d\n", c.Model.MaxTokens)
	fmt.Fprintf(w, "apitimeout: %s\n", c.Model.Timeout)
	fmt.Fprintf(w, "modelurl: %s\n", c.Model.BaseURL)
	fmt.Fprintf(w, "groqkey: %s\n", mask(c.Model.GroqKey))
	fmt.Fprintf(w, "openaikey: %s\n", mask(c.Model.OpenAIKey))
	fmt.Fprintf(w, "anthropickey: %s\n", mask(c.Model.AnthropicKey))
	fmt.Fprintf(w, "geminikey: %s\n", mask(c.Model.GeminiKey))
	fmt.Fprintf(w, "ollamaurl: %s\n", c.Model.OllamaURL)
	fmt.Fprintf(w, "ollamakey: %s\n", mask(c.Model.OllamaKey))

	fmt.Fprintf(w, "maxturns: %d\n", c.Agent.MaxTurns)
	fmt.Fprintf(w, "toolparallelism: %d\n", c.Agent.ToolParallelism)
	fmt.Fprintf(w, "tooltimeout: %s\n", c.Agent.ToolTimeout)
	fmt.Fprintf(w, "runtimeout: %s\n", c.Agent.RunTimeout)
	fmt.Fprintf(w, "instructions: %s\n", c.Agent.Instructions)

	fmt.Fprintf(w, "weatherkey: %s\n", mask(c.Tools.WeatherKey))
	fmt.Fprintf(w, "weatherurl: %s\n", c.Tools.WeatherURL)
	fmt.Fprintf(w, "tavilykey: %s\n", mask(c.Tools.TavilyKey))
	fmt.Fprintf(w, "exchangeratekey: %s\n", mask(c.Tools.ExchangeRateKey))
	fmt.Fprintf(w, "openroutekey: %s\n", mask(c.Tools.OpenRouteKey))

	fmt.Fprintf(w, "cachesize: %d\n", c.Cache.Size)
	fmt.Fprintf(w, "cachettl: %s\n", c.Cache.ToolTTL)
	fmt.Fprintf(w, "ratettl: %s\n", c.Cache.RateTTL)

	fmt.Fprintf(w, "addr: %s\n", c.Server.Addr)
	fmt.Fprintf(w, "ginmode: %s\n", c.Server.GinMode)

	fmt.Fprintf(w, "postgresurl: %s\n", mask(c.Audit.PostgresURL))
	fmt.Fprintf(w, "mongouri: %s\n", mask(c.Audit.MongoURI))
	fmt.Fprintf(w, "neo4juri: %s\n", c.Audit.Neo4jURI)
	fmt.Fprintf(w, "neo4jpassword: %s\n", mask(c.Audit.Neo4jPassword))
}
