package agent

import (
	"context"

	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

// ToolRequest captures an invocation request for a tool.
type ToolRequest struct {
	RunID     string
	CallID    string
	Arguments map[string]any
}

// ToolResponse represents the structured response returned by a tool.
type ToolResponse struct {
	Content  string
	Metadata map[string]string
}

// Tool exposes structured metadata and an invocation handler.
type Tool interface {
	Spec() models.ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

// ToolProvider owns a group of related tools, e.g. every weather tool backed by one API client.
type ToolProvider interface {
	Name() string
	Tools() []Tool
}

// ToolFunc adapts a plain function into a Tool.
type ToolFunc struct {
	ToolSpec models.ToolSpec
	Fn       func(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

func (f ToolFunc) Spec() models.ToolSpec { return f.ToolSpec }

func (f ToolFunc) Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error) {
	return f.Fn(ctx, req)
}

type staticProvider struct {
	name  string
	tools []Tool
}

func (p staticProvider) Name() string  { return p.name }
func (p staticProvider) Tools() []Tool { return p.tools }

// ProviderOf groups already-built tools under a provider name.
func ProviderOf(name string, tools ...Tool) ToolProvider {
	return staticProvider{name: name, tools: tools}
}

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusTruncated Status = "truncated"
)

// Result is what a run hands back to its caller.
type Result struct {
	RunID      string
	Posture    BudgetPosture
	FinalText  string
	Transcript []models.Message
	Status     Status
	Turns      int
	Cancelled  bool
	// Reason is nil for completed runs. For truncated runs it wraps ErrLoopTruncated and,
	// when the run was cancelled, the context error.
	Reason error
}

// ToolCalls counts the tool calls recorded in the transcript.
func (r *Result) ToolCalls() int {
	n := 0
	for _, m := range r.Transcript {
		n += len(m.ToolCalls)
	}
	return n
}
