package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// PlaceSearchConfig configures the Tavily-backed place search tools.
type PlaceSearchConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	MaxResults int
}

// PlaceSearchTools answers attraction, restaurant, activity and transportation questions through Tavily search.
type PlaceSearchTools struct {
	api        *apiClient
	maxResults int
}

type placeArgs struct {
	Place string `json:"place" jsonschema_description:"City or region to search, e.g. 'Kyoto'."`
}

func (a placeArgs) Validate() error {
	if strings.TrimSpace(a.Place) == "" {
		return errors.New("place is required")
	}
	return nil
}

type placeSearch struct {
	name        string
	description string
	query       string
	prefix      string
}

var placeSearches = []placeSearch{
	{"search_attractions", "Search attractions of a place.",
		"top attractive places in and around %s", "Following are the attractions of %s: "},
	{"search_restaurants", "Search restaurants of a place.",
		"what are the top 10 restaurants and eateries in and around %s.", "Following are the restaurants of %s: "},
	{"search_activities", "Search activities of a place.",
		"activities in and around %s", "Following are the activities in and around %s: "},
	{"search_transportation", "Search transportation of a place.",
		"What are the different modes of transportations available in %s", "Following are the modes of transportation available in %s: "},
}

func NewPlaceSearchTools(cfg PlaceSearchConfig) (*PlaceSearchTools, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("place search: tavily api key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultTavilyBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	api := newAPIClient(base, cfg.HTTPClient, cfg.APIKey)
	api.header.Set("Authorization", "Bearer "+cfg.APIKey)
	return &PlaceSearchTools{api: api, maxResults: maxResults}, nil
}

func (p *PlaceSearchTools) Name() string { return "place_search" }

func (p *PlaceSearchTools) Tools() []agent.Tool {
	out := make([]agent.Tool, 0, len(placeSearches))
	for _, s := range placeSearches {
		s := s
		out = append(out, newTool(s.name, s.description, func(ctx context.Context, args placeArgs) (string, error) {
			answer, err := p.search(ctx, fmt.Sprintf(s.query, args.Place))
			if err != nil {
				return "", fmt.Errorf("%s %s: %w", s.name, args.Place, err)
			}
			return fmt.Sprintf(s.prefix, args.Place) + answer, nil
		}))
	}
	return out
}

// search prefers Tavily's synthesized answer and falls back to the raw result snippets.
func (p *PlaceSearchTools) search(ctx context.Context, query string) (string, error) {
	res, err := p.api.postJSON(ctx, "tavily search", "/search", map[string]any{
		"query":          query,
		"topic":          "general",
		"include_answer": "advanced",
		"max_results":    p.maxResults,
	})
	if err != nil {
		return "", err
	}
	if answer := strings.TrimSpace(res.Get("answer").String()); answer != "" {
		return answer, nil
	}

	var b strings.Builder
	res.Get("results").ForEach(func(_, r gjson.Result) bool {
		fmt.Fprintf(&b, "\n- %s: %s (%s)", r.Get("title").String(), strings.TrimSpace(r.Get("content").String()), r.Get("url").String())
		return true
	})
	if b.Len() == 0 {
		return "no results found", nil
	}
	return b.String(), nil
}
