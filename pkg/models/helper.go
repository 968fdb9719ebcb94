package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProviderConfig carries everything a provider binding needs. Nothing is read from the environment.
type ProviderConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	MaxTokens  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

const (
	defaultMaxTokens = 2048
	groqBaseURL      = "https://api.groq.com/openai/v1"
	groqDefaultModel = "llama-3.3-70b-versatile"
)

// NewChatModel builds the binding named by cfg.Provider.
func NewChatModel(ctx context.Context, cfg ProviderConfig) (ChatModel, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return NewOpenAILLM(cfg)
	case "groq":
		if cfg.BaseURL == "" {
			cfg.BaseURL = groqBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = groqDefaultModel
		}
		cfg.Provider = "groq"
		return NewOpenAILLM(cfg)
	case "gemini", "google":
		return NewGeminiLLM(ctx, cfg)
	case "ollama":
		return NewOllamaLLM(cfg)
	case "anthropic", "claude":
		return NewAnthropicLLM(cfg)
	case "scripted", "dummy":
		return NewScriptedLLM(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func (c ProviderConfig) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &http.Client{Timeout: timeout}
}

func (c ProviderConfig) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return defaultMaxTokens
}

func newCallID() string {
	return "call_" + uuid.NewString()
}

// decodeArguments parses a JSON object of tool arguments. Empty input yields an empty map.
func decodeArguments(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	args := map[string]any{}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	return args, nil
}

// newToolCall decodes raw arguments into a ToolCall. A decode failure is recorded on the call
// instead of failing the whole reply.
func newToolCall(id, name string, raw []byte) ToolCall {
	call := ToolCall{ID: id, Name: name}
	args, err := decodeArguments(raw)
	if err != nil {
		call.Arguments = map[string]any{}
		call.ArgumentsError = err.Error()
		return call
	}
	call.Arguments = args
	return call
}

func encodeArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// schemaParts splits a JSON-schema object into its properties and required list.
func schemaParts(schema map[string]any) (map[string]any, []string) {
	props, _ := schema["properties"].(map[string]any)
	if props == nil {
		props = map[string]any{}
	}
	return props, stringList(schema["required"])
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// convertJSON round-trips src through JSON into dst. Used where an SDK type is easier to describe
// by its wire form than by its Go struct.
func convertJSON(src, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
