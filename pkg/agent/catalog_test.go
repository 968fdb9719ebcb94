package agent

import (
	"context"
	"strings"
	"testing"
)

func TestToolCatalogKeepsProviderOrder(t *testing.T) {
	catalog, err := NewToolCatalog(
		ProviderOf("weather", &stubTool{name: "get_current_weather"}, &stubTool{name: "get_weather_forecast"}),
		ProviderOf("currency", &stubTool{name: "convert_currency"}),
	)
	if err != nil {
		t.Fatalf("NewToolCatalog returned error: %v", err)
	}
	specs := catalog.Specs()
	want := []string{"get_current_weather", "get_weather_forecast", "convert_currency"}
	if len(specs) != len(want) {
		t.Fatalf("expected %d specs, got %d", len(want), len(specs))
	}
	for i, name := range want {
		if specs[i].Name != name || catalog.Tools()[i].Spec().Name != name {
			t.Fatalf("position %d = %s, want %s", i, specs[i].Name, name)
		}
	}
	if catalog.Len() != 3 {
		t.Fatalf("unexpected Len %d", catalog.Len())
	}
}

func TestToolCatalogLookupIsCaseInsensitive(t *testing.T) {
	catalog, err := NewToolCatalog(ProviderOf("calc", &stubTool{name: "Add"}))
	if err != nil {
		t.Fatalf("NewToolCatalog returned error: %v", err)
	}
	tool, spec, ok := catalog.Lookup("  add ")
	if !ok || tool == nil || spec.Name != "Add" {
		t.Fatalf("lookup failed: %v %+v", ok, spec)
	}
	if _, _, ok := catalog.Lookup("subtract"); ok {
		t.Fatalf("unexpected match for unknown tool")
	}
}

func TestToolCatalogRejectsCollision(t *testing.T) {
	_, err := NewToolCatalog(
		ProviderOf("places", &stubTool{name: "search"}),
		ProviderOf("web", &stubTool{name: "search"}),
	)
	if err == nil {
		t.Fatalf("expected collision error")
	}
	for _, part := range []string{"search", "places", "web"} {
		if !strings.Contains(err.Error(), part) {
			t.Fatalf("error %q should mention %q", err, part)
		}
	}
}

func TestToolCatalogRejectsInvalidTools(t *testing.T) {
	if _, err := NewToolCatalog(ProviderOf("p", nil)); err == nil {
		t.Fatalf("expected error for nil tool")
	}
	if _, err := NewToolCatalog(ProviderOf("p", &stubTool{name: "  "})); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestToolFuncAdapter(t *testing.T) {
	catalog, err := NewToolCatalog(ProviderOf("fn", ToolFunc{
		ToolSpec: (&stubTool{name: "ping"}).Spec(),
		Fn: func(_ context.Context, _ ToolRequest) (ToolResponse, error) {
			return ToolResponse{Content: "pong"}, nil
		},
	}))
	if err != nil {
		t.Fatalf("NewToolCatalog returned error: %v", err)
	}
	tool, _, _ := catalog.Lookup("ping")
	resp, err := tool.Invoke(context.Background(), ToolRequest{})
	if err != nil || resp.Content != "pong" {
		t.Fatalf("unexpected response %q %v", resp.Content, err)
	}
}
