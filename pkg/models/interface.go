package models

import (
	"context"
)

// Role tags the variant carried by a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	// ArgumentsError is set when the model's arguments could not be decoded. The call is kept so it
	// can still be answered with an error result.
	ArgumentsError string `json:"arguments_error,omitempty"`
}

// Message is one entry of a conversation. Which fields are meaningful depends on Role:
// assistant messages may carry ToolCalls, tool messages carry ToolCallID, ToolName and IsError.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
}

// ToolSpec describes how a tool is presented to the model.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ChatModel is a tool-calling language model. Invoke performs exactly one provider call.
type ChatModel interface {
	Name() string
	Invoke(ctx context.Context, messages []Message, tools []ToolSpec) (Message, error)
}

func SystemMessage(text string) Message { return Message{Role: RoleSystem, Content: text} }

func UserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

func AssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

func ToolResultMessage(callID, toolName, content string, isError bool) Message {
	return Message{Role: RoleTool, ToolCallID: callID, ToolName: toolName, Content: content, IsError: isError}
}
