package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
)

const defaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// WeatherConfig configures the OpenWeatherMap tools.
type WeatherConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// ForecastCount is the number of 3-hour forecast slots requested. Defaults to 10.
	ForecastCount int
}

// WeatherTools serves current conditions and short forecasts from OpenWeatherMap.
type WeatherTools struct {
	api           *apiClient
	apiKey        string
	forecastCount int
}

type cityArgs struct {
	City string `json:"city" jsonschema_description:"City name, optionally with a country code, e.g. 'Paris' or 'Paris,FR'."`
}

func (a cityArgs) Validate() error {
	if strings.TrimSpace(a.City) == "" {
		return errors.New("city is required")
	}
	return nil
}

func NewWeatherTools(cfg WeatherConfig) (*WeatherTools, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("weather: api key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultWeatherBaseURL
	}
	count := cfg.ForecastCount
	if count <= 0 {
		count = 10
	}
	return &WeatherTools{api: newAPIClient(base, cfg.HTTPClient, cfg.APIKey), apiKey: cfg.APIKey, forecastCount: count}, nil
}

func (w *WeatherTools) Name() string { return "weather" }

func (w *WeatherTools) Tools() []agent.Tool {
	return []agent.Tool{
		newTool("get_current_weather", "Get the current weather for a city.", w.current),
		newTool("get_weather_forecast", "Get the weather forecast for a city in 3-hour steps.", w.forecast),
	}
}

func (w *WeatherTools) query(city string) url.Values {
	return url.Values{"q": {strings.TrimSpace(city)}, "appid": {w.apiKey}, "units": {"metric"}}
}

func (w *WeatherTools) current(ctx context.Context, args cityArgs) (string, error) {
	res, err := w.api.getJSON(ctx, "current weather lookup", "/weather", w.query(args.City))
	if err != nil {
		return "", fmt.Errorf("current weather for %s: %w", args.City, err)
	}
	name := res.Get("name").String()
	if name == "" {
		name = args.City
	}
	return fmt.Sprintf("Current weather in %s: %.1f°C (feels like %.1f°C), %s, humidity %d%%, wind %.1f m/s.",
		name,
		res.Get("main.temp").Float(),
		res.Get("main.feels_like").Float(),
		res.Get("weather.0.description").String(),
		res.Get("main.humidity").Int(),
		res.Get("wind.speed").Float(),
	), nil
}

func (w *WeatherTools) forecast(ctx context.Context, args cityArgs) (string, error) {
	q := w.query(args.City)
	q.Set("cnt", fmt.Sprint(w.forecastCount))
	res, err := w.api.getJSON(ctx, "forecast lookup", "/forecast", q)
	if err != nil {
		return "", fmt.Errorf("weather forecast for %s: %w", args.City, err)
	}
	name := res.Get("city.name").String()
	if name == "" {
		name = args.City
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather forecast for %s:", name)
	res.Get("list").ForEach(func(_, slot gjson.Result) bool {
		fmt.Fprintf(&b, "\n- %s: %.1f°C, %s", slot.Get("dt_txt").String(), slot.Get("main.temp").Float(),
			slot.Get("weather.0.description").String())
		return true
	})
	return b.String(), nil
}
