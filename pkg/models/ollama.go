package models

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

type OllamaLLM struct {
	Client *ollama.Client
	Model  string
}

// bearerTransport adds an Authorization header for hosted Ollama endpoints.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(req)
}

func NewOllamaLLM(cfg ProviderConfig) (*OllamaLLM, error) {
	host := cfg.BaseURL
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	httpClient := cfg.httpClient()
	if cfg.APIKey != "" {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		clone := *httpClient
		clone.Transport = &bearerTransport{token: cfg.APIKey, base: base}
		httpClient = &clone
	}

	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaLLM{Client: ollama.NewClient(u, httpClient), Model: model}, nil
}

func (o *OllamaLLM) Name() string { return "ollama:" + o.Model }

func (o *OllamaLLM) Invoke(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
	var wireMessages []ollama.Message
	if err := convertJSON(ollamaWireMessages(messages), &wireMessages); err != nil {
		return Message{}, fmt.Errorf("ollama messages: %w", err)
	}
	var wireTools []ollama.Tool
	if len(tools) > 0 {
		if err := convertJSON(ollamaWireTools(tools), &wireTools); err != nil {
			return Message{}, fmt.Errorf("ollama tools: %w", err)
		}
	}

	stream := false
	req := &ollama.ChatRequest{
		Model:    o.Model,
		Messages: wireMessages,
		Tools:    wireTools,
		Stream:   &stream,
	}

	var (
		text  strings.Builder
		calls []ToolCall
	)
	err := o.Client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		for _, tc := range resp.Message.ToolCalls {
			raw, err := json.Marshal(tc.Function.Arguments)
			if err != nil {
				return err
			}
			calls = append(calls, newToolCall(newCallID(), tc.Function.Name, raw))
		}
		return nil
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Role: RoleAssistant, Content: text.String(), ToolCalls: calls}, nil
}

func ollamaWireMessages(messages []Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		msg := map[string]any{"role": string(m.Role), "content": m.Content}
		if len(m.ToolCalls) > 0 {
			calls := make([]map[string]any, 0, len(m.ToolCalls))
			for _, call := range m.ToolCalls {
				args := call.Arguments
				if args == nil {
					args = map[string]any{}
				}
				calls = append(calls, map[string]any{
					"function": map[string]any{"name": call.Name, "arguments": args},
				})
			}
			msg["tool_calls"] = calls
		}
		if m.Role == RoleTool {
			msg["tool_name"] = m.ToolName
		}
		out = append(out, msg)
	}
	return out
}

func ollamaWireTools(tools []ToolSpec) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		props, required := schemaParts(t.InputSchema)
		if required == nil {
			required = []string{}
		}
		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters": map[string]any{
					"type":       "object",
					"properties": props,
					"required":   required,
				},
			},
		})
	}
	return out
}

var _ ChatModel = (*OllamaLLM)(nil)
