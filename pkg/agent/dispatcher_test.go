package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

func newTestDispatcher(t *testing.T, opts DispatcherOptions, tools ...Tool) *Dispatcher {
	t.Helper()
	catalog, err := NewToolCatalog(ProviderOf("test", tools...))
	if err != nil {
		t.Fatalf("NewToolCatalog returned error: %v", err)
	}
	return NewDispatcher(catalog, opts)
}

func TestDispatchSuccessPassesArguments(t *testing.T) {
	echo := &stubTool{name: "echo"}
	d := newTestDispatcher(t, DispatcherOptions{}, echo)

	msg := d.Dispatch(context.Background(), "run-1", call("c1", "echo", "hello"))
	if msg.IsError || msg.Content != "echo:hello" || msg.ToolCallID != "c1" || msg.ToolName != "echo" {
		t.Fatalf("unexpected result %+v", msg)
	}
	if echo.lastInput.RunID != "run-1" || echo.lastInput.CallID != "c1" {
		t.Fatalf("request metadata not forwarded: %+v", echo.lastInput)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d := newTestDispatcher(t, DispatcherOptions{})
	msg := d.Dispatch(context.Background(), "r", call("c9", "missing", ""))
	if !msg.IsError || msg.ToolCallID != "c9" {
		t.Fatalf("unexpected result %+v", msg)
	}
	if gjson.Get(msg.Content, "error.kind").String() != "tool_unknown" || gjson.Get(msg.Content, "error.tool").String() != "missing" {
		t.Fatalf("unexpected payload %s", msg.Content)
	}
}

func TestDispatchToolTimeout(t *testing.T) {
	slow := &stubTool{name: "slow", delay: time.Second}
	d := newTestDispatcher(t, DispatcherOptions{Timeout: 10 * time.Millisecond}, slow)

	start := time.Now()
	msg := d.Dispatch(context.Background(), "r", call("c1", "slow", "x"))
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("timeout not applied")
	}
	if !msg.IsError || gjson.Get(msg.Content, "error.kind").String() != "tool_execution_failure" {
		t.Fatalf("expected failure result, got %+v", msg)
	}
}

func TestDispatchAllSequentialKeepsOrder(t *testing.T) {
	d := newTestDispatcher(t, DispatcherOptions{Parallelism: 1}, &stubTool{name: "echo"})
	calls := []models.ToolCall{call("1", "echo", "a"), call("2", "nope", "b"), call("3", "echo", "c")}

	results := d.DispatchAll(context.Background(), "r", calls)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, c := range calls {
		if results[i].ToolCallID != c.ID {
			t.Fatalf("result %d has id %s, want %s", i, results[i].ToolCallID, c.ID)
		}
	}
	if !results[1].IsError || results[0].IsError || results[2].IsError {
		t.Fatalf("only the unknown tool should fail")
	}
}

func TestDispatchAllCancelledContextStillAnswersEveryCall(t *testing.T) {
	echo := &stubTool{name: "echo"}
	d := newTestDispatcher(t, DispatcherOptions{}, echo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.DispatchAll(ctx, "r", []models.ToolCall{call("1", "echo", "a"), call("2", "echo", "b")})
	for i, r := range results {
		if !r.IsError || r.Role != models.RoleTool {
			t.Fatalf("result %d should be a failure, got %+v", i, r)
		}
	}
	if echo.calls != 0 {
		t.Fatalf("no tool should run after cancellation")
	}
}

func TestToolExecutionErrorUnwraps(t *testing.T) {
	base := errors.New("quota exceeded")
	err := &ToolExecutionError{Tool: "convert_currency", Err: base}
	if !errors.Is(err, base) {
		t.Fatalf("expected unwrap to expose the tool error")
	}
	if !errors.Is(err, ErrToolExecutionFailure) || errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("unexpected sentinel matching for %v", err)
	}
}

func TestDispatchMalformedArguments(t *testing.T) {
	echo := &stubTool{name: "echo"}
	d := newTestDispatcher(t, DispatcherOptions{}, echo)

	msg := d.Dispatch(context.Background(), "r", models.ToolCall{ID: "c1", Name: "echo", ArgumentsError: "bad json"})
	if !msg.IsError || msg.ToolCallID != "c1" || !strings.Contains(msg.Content, ErrInvalidArguments.Error()) {
		t.Fatalf("unexpected result %+v", msg)
	}
	if echo.calls != 0 {
		t.Fatalf("tool should not be invoked")
	}
}
