package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
	"github.com/Amarendra0207/Agentic-Travel/pkg/cache"
)

const defaultExchangeRateBaseURL = "https://v6.exchangerate-api.com/v6"

// CurrencyConfig configures the ExchangeRate-API conversion tool.
type CurrencyConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// RateTTL controls how long the rates of one base currency are reused. Zero disables caching.
	RateTTL time.Duration
}

// CurrencyTools converts amounts between currencies with the latest published rates.
type CurrencyTools struct {
	api    *apiClient
	apiKey string
	rates  *cache.LRUCache[map[string]float64]
}

type conversionArgs struct {
	Amount       float64 `json:"amount" jsonschema_description:"Amount of money to convert."`
	FromCurrency string  `json:"from_currency" jsonschema_description:"ISO 4217 code of the source currency, e.g. USD."`
	ToCurrency   string  `json:"to_currency" jsonschema_description:"ISO 4217 code of the target currency, e.g. EUR."`
}

func (a *conversionArgs) Validate() error {
	a.FromCurrency = strings.ToUpper(strings.TrimSpace(a.FromCurrency))
	a.ToCurrency = strings.ToUpper(strings.TrimSpace(a.ToCurrency))
	if a.FromCurrency == "" || a.ToCurrency == "" {
		return errors.New("from_currency and to_currency are required")
	}
	if a.Amount < 0 {
		return errors.New("amount must not be negative")
	}
	return nil
}

func NewCurrencyTools(cfg CurrencyConfig) (*CurrencyTools, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("currency: exchange rate api key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultExchangeRateBaseURL
	}
	t := &CurrencyTools{api: newAPIClient(base, cfg.HTTPClient, cfg.APIKey), apiKey: cfg.APIKey}
	if cfg.RateTTL > 0 {
		t.rates = cache.NewLRUCache[map[string]float64](64, cfg.RateTTL)
	}
	return t, nil
}

func (c *CurrencyTools) Name() string { return "currency" }

func (c *CurrencyTools) Tools() []agent.Tool {
	return []agent.Tool{
		newTool("convert_currency", "Convert an amount from one currency to another using current exchange rates.", c.convert),
	}
}

func (c *CurrencyTools) convert(ctx context.Context, args conversionArgs) (string, error) {
	rates, err := c.latestRates(ctx, args.FromCurrency)
	if err != nil {
		return "", err
	}
	rate, ok := rates[args.ToCurrency]
	if !ok {
		return "", fmt.Errorf("currency %s not found in conversion rates for %s", args.ToCurrency, args.FromCurrency)
	}
	return fmt.Sprintf("%.2f %s = %.2f %s (rate %g)", args.Amount, args.FromCurrency, args.Amount*rate, args.ToCurrency, rate), nil
}

func (c *CurrencyTools) latestRates(ctx context.Context, base string) (map[string]float64, error) {
	if c.rates != nil {
		if rates, ok := c.rates.Get(base); ok {
			return rates, nil
		}
	}

	res, err := c.api.getJSON(ctx, "latest rates", "/"+c.apiKey+"/latest/"+base, nil)
	if err != nil {
		return nil, fmt.Errorf("exchange rates for %s: %w", base, err)
	}
	if res.Get("result").String() == "error" {
		return nil, fmt.Errorf("exchange rates for %s: %s", base, res.Get("error-type").String())
	}

	rates := map[string]float64{}
	res.Get("conversion_rates").ForEach(func(code, rate gjson.Result) bool {
		rates[code.String()] = rate.Float()
		return true
	})
	if len(rates) == 0 {
		return nil, fmt.Errorf("exchange rates for %s: response has no conversion_rates", base)
	}
	if c.rates != nil {
		c.rates.Set(base, rates)
	}
	return rates, nil
}
