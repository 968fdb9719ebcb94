package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/base"
	"github.com/universal-tool-calling-protocol/go-utcp/src/tools"
)

// AsUTCPTool exposes the whole planner as a single in-process UTCP tool.
func (a *Agent) AsUTCPTool(name, description string) tools.Tool {
	return tools.Tool{
		Name:        name,
		Description: description,
		Provider: &base.BaseProvider{
			Name:         providerPrefix(name),
			ProviderType: base.ProviderCLI, // in-process handler, no remote transport
		},
		Inputs: tools.ToolInputOutputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The travel planning request.",
				},
				"budget_preference": map[string]any{
					"type":        "string",
					"enum":        []string{string(PostureCheapest), string(PostureBudgetFriendly), string(PostureLuxurious)},
					"description": "Budget posture; defaults to budget_friendly.",
				},
			},
			Required: []string{"query"},
		},
		Outputs: tools.ToolInputOutputSchema{
			Type: "object",
			Properties: map[string]any{
				"answer": map[string]any{"type": "string"},
				"status": map[string]any{"type": "string"},
				"turns":  map[string]any{"type": "integer"},
				"run_id": map[string]any{"type": "string"},
			},
		},
		Handler: tools.ToolHandler(func(meta map[string]interface{}, inputs map[string]interface{}) (map[string]interface{}, error) {
			query, ok := inputs["query"].(string)
			if !ok || strings.TrimSpace(query) == "" {
				return nil, fmt.Errorf("missing or invalid 'query'")
			}
			posture, _ := inputs["budget_preference"].(string)

			res, err := a.Run(handlerContext(meta), ParsePosture(posture), query)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"answer": res.FinalText,
				"status": string(res.Status),
				"turns":  res.Turns,
				"run_id": res.RunID,
			}, nil
		}),
	}
}

// UTCPTools exports every catalog tool as an in-process UTCP tool named "<provider>.<tool>".
func (c *ToolCatalog) UTCPTools(provider string) []tools.Tool {
	out := make([]tools.Tool, 0, len(c.order))
	for _, key := range c.order {
		tool, spec := c.tools[key], c.specs[key]
		props, _ := spec.InputSchema["properties"].(map[string]any)
		out = append(out, tools.Tool{
			Name:        provider + "." + spec.Name,
			Description: spec.Description,
			Provider: &base.BaseProvider{
				Name:         provider,
				ProviderType: base.ProviderCLI,
			},
			Inputs: tools.ToolInputOutputSchema{
				Type:       "object",
				Properties: props,
				Required:   requiredList(spec.InputSchema["required"]),
			},
			Handler: tools.ToolHandler(func(meta map[string]interface{}, inputs map[string]interface{}) (map[string]interface{}, error) {
				resp, err := tool.Invoke(handlerContext(meta), ToolRequest{Arguments: inputs})
				if err != nil {
					return nil, &ToolExecutionError{Tool: spec.Name, Err: err}
				}
				return map[string]interface{}{"result": resp.Content}, nil
			}),
		})
	}
	return out
}

// UTCPContextKey is the key under which a UTCP caller may pass a context.Context in the handler's
// context map. Without one, handlers run on context.Background.
const UTCPContextKey = "context"

func handlerContext(meta map[string]interface{}) context.Context {
	if ctx, ok := meta[UTCPContextKey].(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}

func providerPrefix(name string) string {
	if parts := strings.Split(name, "."); len(parts) > 1 {
		return parts[0]
	}
	return strings.TrimSpace(name)
}

func requiredList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
