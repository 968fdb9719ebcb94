package models

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/tidwall/gjson"
)

var weatherSpec = ToolSpec{
	Name:        "get_current_weather",
	Description: "Current weather for a city.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{"type": "string", "description": "City name."},
		},
		"required": []any{"city"},
	},
}

func toolTurn() []Message {
	return []Message{
		SystemMessage("be helpful"),
		UserMessage("weather in Paris and Rome?"),
		AssistantMessage("", ToolCall{ID: "c1", Name: "get_current_weather", Arguments: map[string]any{"city": "Paris"}},
			ToolCall{ID: "c2", Name: "get_current_weather", Arguments: map[string]any{"city": "Rome"}}),
		ToolResultMessage("c1", "get_current_weather", "sunny", false),
		ToolResultMessage("c2", "get_current_weather", "boom", true),
	}
}

func TestNewChatModelErrorsOnUnknownProvider(t *testing.T) {
	if _, err := NewChatModel(context.Background(), ProviderConfig{Provider: "unknown"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestNewChatModelRequiresAPIKey(t *testing.T) {
	for _, provider := range []string{"openai", "groq", "anthropic", "gemini"} {
		if _, err := NewChatModel(context.Background(), ProviderConfig{Provider: provider}); err == nil {
			t.Fatalf("%s: expected error without api key", provider)
		}
	}
}

func TestNewChatModelGroqUsesCompatibleEndpoint(t *testing.T) {
	m, err := NewChatModel(context.Background(), ProviderConfig{Provider: "groq", APIKey: "k", Model: "llama-3.1-8b-instant"})
	if err != nil {
		t.Fatalf("NewChatModel returned error: %v", err)
	}
	if got := m.Name(); got != "groq:llama-3.1-8b-instant" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestScriptedLLMRepeatsLastReply(t *testing.T) {
	llm := NewScriptedLLM(AssistantMessage("one"), AssistantMessage("two"))
	var got []string
	for i := 0; i < 3; i++ {
		msg, err := llm.Invoke(context.Background(), []Message{UserMessage("hi")}, nil)
		if err != nil {
			t.Fatalf("Invoke returned error: %v", err)
		}
		got = append(got, msg.Content)
	}
	if strings.Join(got, ",") != "one,two,two" {
		t.Fatalf("unexpected replies %v", got)
	}
	if llm.Calls() != 3 {
		t.Fatalf("expected 3 calls, got %d", llm.Calls())
	}
}

func TestScriptedLLMEchoesWithoutScript(t *testing.T) {
	llm := NewScriptedLLM()
	msg, err := llm.Invoke(context.Background(), []Message{SystemMessage("s"), UserMessage("plan Goa")}, nil)
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if msg.Content != "plan Goa" || msg.Role != RoleAssistant {
		t.Fatalf("unexpected reply %+v", msg)
	}
}

func TestScriptedLLMReturnsConfiguredError(t *testing.T) {
	llm := NewScriptedLLM()
	llm.Err = errors.New("offline")
	if _, err := llm.Invoke(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenAILLMInvokeRoundTripsToolCalls(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"",
			"tool_calls":[{"id":"call_9","type":"function","function":{"name":"get_current_weather","arguments":"{\"city\":\"Oslo\"}"}}]}}]}`)
	}))
	defer srv.Close()

	llm, err := NewOpenAILLM(ProviderConfig{APIKey: "k", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewOpenAILLM returned error: %v", err)
	}
	msg, err := llm.Invoke(context.Background(), toolTurn(), []ToolSpec{weatherSpec})
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].ID != "call_9" || msg.ToolCalls[0].Arguments["city"] != "Oslo" {
		t.Fatalf("unexpected tool calls %+v", msg.ToolCalls)
	}

	if n := gjson.GetBytes(body, "messages.#").Int(); n != 5 {
		t.Fatalf("expected full history of 5 messages, got %d", n)
	}
	if id := gjson.GetBytes(body, "messages.4.tool_call_id").String(); id != "c2" {
		t.Fatalf("tool result lost its call id: %q", id)
	}
	if name := gjson.GetBytes(body, "tools.0.function.name").String(); name != "get_current_weather" {
		t.Fatalf("tool spec not sent: %q", name)
	}
}

func TestAnthropicLLMInvokeGroupsToolResults(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-sonnet-latest",
			"content":[{"type":"text","text":"Converting."},
			{"type":"tool_use","id":"toolu_1","name":"convert_currency","input":{"amount":10,"from_currency":"USD","to_currency":"EUR"}}],
			"stop_reason":"tool_use","stop_sequence":null,"usage":{"input_tokens":1,"output_tokens":1}}`)
	}))
	defer srv.Close()

	llm, err := NewAnthropicLLM(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewAnthropicLLM returned error: %v", err)
	}
	msg, err := llm.Invoke(context.Background(), toolTurn(), []ToolSpec{weatherSpec})
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if msg.Content != "Converting." {
		t.Fatalf("unexpected text %q", msg.Content)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].ID != "toolu_1" || msg.ToolCalls[0].Arguments["to_currency"] != "EUR" {
		t.Fatalf("unexpected tool calls %+v", msg.ToolCalls)
	}

	if sys := gjson.GetBytes(body, "system.0.text").String(); sys != "be helpful" {
		t.Fatalf("system prompt not sent: %q", sys)
	}
	if n := gjson.GetBytes(body, "messages.#").Int(); n != 3 {
		t.Fatalf("expected user, assistant, tool-results messages, got %d", n)
	}
	if n := gjson.GetBytes(body, "messages.2.content.#").Int(); n != 2 {
		t.Fatalf("expected both tool results in one message, got %d", n)
	}
	if !gjson.GetBytes(body, "messages.2.content.1.is_error").Bool() {
		t.Fatalf("error flag not forwarded")
	}
}

func TestOllamaLLMInvokeSynthesizesCallIDs(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"llama3.2","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"add","arguments":{"a":1,"b":2}}}]},"done":true}`+"\n")
	}))
	defer srv.Close()

	llm, err := NewOllamaLLM(ProviderConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOllamaLLM returned error: %v", err)
	}
	msg, err := llm.Invoke(context.Background(), toolTurn(), []ToolSpec{weatherSpec})
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].Name != "add" || !strings.HasPrefix(msg.ToolCalls[0].ID, "call_") {
		t.Fatalf("unexpected tool calls %+v", msg.ToolCalls)
	}
	if gjson.GetBytes(body, "stream").Bool() {
		t.Fatalf("expected non-streamed request")
	}
	if name := gjson.GetBytes(body, "tools.0.function.name").String(); name != "get_current_weather" {
		t.Fatalf("tool spec not sent: %q", name)
	}
	if name := gjson.GetBytes(body, "messages.3.tool_name").String(); name != "get_current_weather" {
		t.Fatalf("tool result lost its tool name: %q", name)
	}
}

func TestOpenAILLMInvokeKeepsMalformedToolCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"llama",
			"choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"",
			"tool_calls":[{"id":"call_1","type":"function","function":{"name":"add","arguments":"{\"a\": 1, \"b\": "}}]}}]}`)
	}))
	defer srv.Close()

	llm, err := NewOpenAILLM(ProviderConfig{Provider: "groq", APIKey: "k", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewOpenAILLM returned error: %v", err)
	}
	msg, err := llm.Invoke(context.Background(), []Message{UserMessage("1 + ?")}, nil)
	if err != nil {
		t.Fatalf("Invoke should not fail on bad arguments: %v", err)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected the call to be kept, got %+v", msg.ToolCalls)
	}
	call := msg.ToolCalls[0]
	if call.ID != "call_1" || call.Name != "add" || call.ArgumentsError == "" || call.Arguments == nil {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestNewToolCallRecordsDecodeError(t *testing.T) {
	ok := newToolCall("c1", "add", []byte(`{"a":1}`))
	if ok.ArgumentsError != "" || ok.Arguments["a"] != float64(1) {
		t.Fatalf("unexpected call %+v", ok)
	}
	bad := newToolCall("c2", "add", []byte(`[1,2`))
	if bad.ArgumentsError == "" || len(bad.Arguments) != 0 || bad.ID != "c2" {
		t.Fatalf("unexpected call %+v", bad)
	}
}

func TestToGeminiContentsMergesToolResults(t *testing.T) {
	system, contents := toGeminiContents(toolTurn())
	if len(system) != 1 {
		t.Fatalf("expected one system part, got %d", len(system))
	}
	if len(contents) != 3 {
		t.Fatalf("expected user, model, function responses; got %d", len(contents))
	}
	if contents[1].Role != "model" || len(contents[1].Parts) != 2 {
		t.Fatalf("unexpected model turn %+v", contents[1])
	}
	if contents[2].Role != "user" || len(contents[2].Parts) != 2 {
		t.Fatalf("unexpected function response turn %+v", contents[2])
	}
}

func TestToGeminiSchema(t *testing.T) {
	s := toGeminiSchema(weatherSpec.InputSchema)
	if s.Type != genai.TypeObject {
		t.Fatalf("expected object schema, got %v", s.Type)
	}
	if s.Properties["city"] == nil || s.Properties["city"].Type != genai.TypeString {
		t.Fatalf("city property not converted: %+v", s.Properties)
	}
	if len(s.Required) != 1 || s.Required[0] != "city" {
		t.Fatalf("unexpected required %v", s.Required)
	}
}
