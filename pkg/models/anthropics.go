package models

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicLLM binds the Anthropic Messages API with tool use.
type AnthropicLLM struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
}

func NewAnthropicLLM(cfg ProviderConfig) (*AnthropicLLM, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(cfg.APIKey),
		anthropicopt.WithHTTPClient(cfg.httpClient()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(cfg.BaseURL))
	}
	cl := anthropic.NewClient(opts...)
	model := cfg.Model
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}
	return &AnthropicLLM{Client: &cl, Model: model, MaxTokens: cfg.maxTokens()}, nil
}

func (a *AnthropicLLM) Name() string { return "anthropic:" + a.Model }

func (a *AnthropicLLM) Invoke(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error) {
	var (
		system         []anthropic.TextBlockParam
		params         []anthropic.MessageParam
		openToolResult bool
	)
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
			openToolResult = false
		case RoleUser:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
			openToolResult = false
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, call := range m.ToolCalls {
				input := call.Arguments
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{ID: call.ID, Name: call.Name, Input: input},
				})
			}
			params = append(params, anthropic.NewAssistantMessage(blocks...))
			openToolResult = false
		case RoleTool:
			// results of one turn share a single user message
			block := anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError)
			if openToolResult {
				last := &params[len(params)-1]
				last.Content = append(last.Content, block)
			} else {
				params = append(params, anthropic.NewUserMessage(block))
				openToolResult = true
			}
		}
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		System:    system,
		Messages:  params,
	}
	for _, t := range tools {
		props, required := schemaParts(t.InputSchema)
		req.Tools = append(req.Tools, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{Properties: props, Required: required},
		}})
	}

	msg, err := a.Client.Messages.New(ctx, req)
	if err != nil {
		return Message{}, err
	}

	out := Message{Role: RoleAssistant}
	var b strings.Builder
	for _, cb := range msg.Content {
		switch block := cb.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(block.Text)
		case anthropic.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, newToolCall(block.ID, block.Name, []byte(block.JSON.Input.Raw())))
		}
	}
	out.Content = b.String()
	return out, nil
}

var _ ChatModel = (*AnthropicLLM)(nil)
