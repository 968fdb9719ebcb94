package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
)

const (
	defaultOpenRouteBaseURL = "https://api.openrouteservice.org"
	earthRadiusKm           = 6371.0
)

// DistanceConfig configures the distance tools. Without an API key only the straight-line tool is offered.
type DistanceConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// DistanceTools estimates travel distances between coordinates.
type DistanceTools struct {
	api *apiClient
}

type routeArgs struct {
	StartLat float64 `json:"start_lat" jsonschema_description:"Latitude of the starting point in decimal degrees."`
	StartLon float64 `json:"start_lon" jsonschema_description:"Longitude of the starting point in decimal degrees."`
	EndLat   float64 `json:"end_lat" jsonschema_description:"Latitude of the destination in decimal degrees."`
	EndLon   float64 `json:"end_lon" jsonschema_description:"Longitude of the destination in decimal degrees."`
}

func (a routeArgs) Validate() error {
	for _, lat := range []float64{a.StartLat, a.EndLat} {
		if lat < -90 || lat > 90 {
			return fmt.Errorf("latitude %v out of range", lat)
		}
	}
	for _, lon := range []float64{a.StartLon, a.EndLon} {
		if lon < -180 || lon > 180 {
			return fmt.Errorf("longitude %v out of range", lon)
		}
	}
	return nil
}

func NewDistanceTools(cfg DistanceConfig) *DistanceTools {
	t := &DistanceTools{}
	if strings.TrimSpace(cfg.APIKey) != "" {
		base := cfg.BaseURL
		if base == "" {
			base = defaultOpenRouteBaseURL
		}
		t.api = newAPIClient(base, cfg.HTTPClient, cfg.APIKey)
		t.api.header.Set("Authorization", cfg.APIKey)
	}
	return t
}

func (d *DistanceTools) Name() string { return "distance" }

func (d *DistanceTools) Tools() []agent.Tool {
	out := []agent.Tool{
		newTool("calculate_straight_line_distance",
			"Great-circle distance in kilometres between two coordinates. Works offline.", d.straightLine),
	}
	if d.api != nil {
		out = append(out, newTool("calculate_driving_distance",
			"Driving distance and duration between two coordinates, e.g. from an airport to an attraction.", d.driving))
	}
	return out
}

func (d *DistanceTools) straightLine(_ context.Context, args routeArgs) (string, error) {
	km := Haversine(args.StartLat, args.StartLon, args.EndLat, args.EndLon)
	return fmt.Sprintf("Straight-line distance: %.2f km", km), nil
}

func (d *DistanceTools) driving(ctx context.Context, args routeArgs) (string, error) {
	res, err := d.api.postJSON(ctx, "driving directions", "/v2/directions/driving-car/geojson", map[string]any{
		"coordinates": [][]float64{{args.StartLon, args.StartLat}, {args.EndLon, args.EndLat}},
	})
	if err != nil {
		return "", fmt.Errorf("driving distance: %w", err)
	}
	segment := res.Get("features.0.properties.segments.0")
	if !segment.Exists() {
		return "", errors.New("driving distance: no route found")
	}
	km := segment.Get("distance").Float() / 1000
	minutes := segment.Get("duration").Float() / 60
	return fmt.Sprintf("Driving distance: %.2f km, about %s by car", km, formatMinutes(minutes)), nil
}

// Haversine returns the great-circle distance in kilometres, rounded to two decimals.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))
	return math.Round(earthRadiusKm*c*100) / 100
}

func formatMinutes(minutes float64) string {
	total := int(math.Round(minutes))
	if total < 60 {
		return fmt.Sprintf("%d min", total)
	}
	return fmt.Sprintf("%dh %02dmin", total/60, total%60)
}
