package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

// GenerateSchema derives the JSON schema of a tool's argument struct. Field docs come from
// `jsonschema_description` tags; fields without omitempty are required.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(fmt.Sprintf("tools: schema for %T: %v", v, err))
	}
	schema := map[string]any{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		panic(fmt.Sprintf("tools: schema for %T: %v", v, err))
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	return schema
}

type validator interface {
	Validate() error
}

// newTool builds a typed tool: arguments are decoded into A (and validated when A implements
// Validate) before run is called.
func newTool[A any](name, description string, run func(context.Context, A) (string, error)) agent.Tool {
	return agent.ToolFunc{
		ToolSpec: models.ToolSpec{
			Name:        name,
			Description: description,
			InputSchema: GenerateSchema[A](),
		},
		Fn: func(ctx context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
			args, err := bindArgs[A](req.Arguments)
			if err != nil {
				return agent.ToolResponse{}, err
			}
			out, err := run(ctx, args)
			if err != nil {
				return agent.ToolResponse{}, err
			}
			return agent.ToolResponse{Content: out}, nil
		},
	}
}

func bindArgs[A any](raw map[string]any) (A, error) {
	var args A
	if raw == nil {
		raw = map[string]any{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return args, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, &args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	if v, ok := any(&args).(validator); ok {
		if err := v.Validate(); err != nil {
			return args, err
		}
	}
	return args, nil
}
