package agent

import (
	"context"
	"testing"

	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

func TestAsUTCPToolRunsAgent(t *testing.T) {
	model := models.NewScriptedLLM(models.AssistantMessage("Itinerary ready."))
	a := newTestAgent(t, model)

	tool := a.AsUTCPTool("travel.plan", "Plan a trip")
	if tool.Name != "travel.plan" || tool.Provider == nil {
		t.Fatalf("unexpected tool %+v", tool)
	}
	out, err := tool.Handler(map[string]interface{}{}, map[string]interface{}{"query": "Lisbon", "budget_preference": "cheapest"})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	resp := out
	if resp["answer"] != "Itinerary ready." || resp["status"] != string(StatusCompleted) {
		t.Fatalf("unexpected response %+v", resp)
	}
	msgs, _ := model.Request(0)
	if msgs[0].Content != InstructionFor(PostureCheapest) {
		t.Fatalf("budget preference not applied")
	}
}

func TestAsUTCPToolRequiresQuery(t *testing.T) {
	a := newTestAgent(t, models.NewScriptedLLM())
	tool := a.AsUTCPTool("plan", "Plan a trip")
	if _, err := tool.Handler(nil, map[string]interface{}{}); err == nil {
		t.Fatalf("expected error without query")
	}
}

func TestCatalogUTCPToolsInvokeUnderlyingTool(t *testing.T) {
	catalog, err := NewToolCatalog(ProviderOf("test", &stubTool{name: "echo"}))
	if err != nil {
		t.Fatalf("NewToolCatalog returned error: %v", err)
	}
	exported := catalog.UTCPTools("travel")
	if len(exported) != 1 || exported[0].Name != "travel.echo" {
		t.Fatalf("unexpected export %+v", exported)
	}
	if len(exported[0].Inputs.Required) != 1 || exported[0].Inputs.Required[0] != "input" {
		t.Fatalf("required inputs not exported: %+v", exported[0].Inputs)
	}
	out, err := exported[0].Handler(map[string]interface{}{UTCPContextKey: context.Background()}, map[string]interface{}{"input": "hi"})
	if err != nil || out["result"] != "echo:hi" {
		t.Fatalf("unexpected output %v %v", out, err)
	}
}

func TestAsUTCPToolUsesContextFromHandlerMap(t *testing.T) {
	a := newTestAgent(t, models.NewScriptedLLM(models.AssistantMessage("never")))
	tool := a.AsUTCPTool("travel.plan", "Plan a trip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := tool.Handler(map[string]interface{}{UTCPContextKey: ctx}, map[string]interface{}{"query": "Oslo"})
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if out["status"] != string(StatusTruncated) {
		t.Fatalf("cancelled context should truncate the run, got %+v", out)
	}
}
