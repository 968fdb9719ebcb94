package models

import (
	"context"
	"sync"
)

// ScriptedLLM replays a fixed list of replies, one per Invoke. Once the script is exhausted the last
// reply is repeated. It makes no network calls and is meant for offline runs and tests.
type ScriptedLLM struct {
	mu       sync.Mutex
	replies  []Message
	calls    int
	requests [][]Message
	tools    [][]ToolSpec
	Err      error
}

func NewScriptedLLM(replies ...Message) *ScriptedLLM {
	return &ScriptedLLM{replies: replies}
}

func (s *ScriptedLLM) Name() string { return "scripted" }

func (s *ScriptedLLM) Invoke(_ context.Context, messages []Message, tools []ToolSpec) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.requests = append(s.requests, append([]Message(nil), messages...))
	s.tools = append(s.tools, append([]ToolSpec(nil), tools...))
	if s.Err != nil {
		return Message{}, s.Err
	}
	if len(s.replies) == 0 {
		return AssistantMessage(lastUserText(messages)), nil
	}
	idx := s.calls - 1
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	reply := s.replies[idx]
	reply.Role = RoleAssistant
	return reply, nil
}

// Calls reports how many times Invoke ran.
func (s *ScriptedLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Request returns the messages and tools seen by the i-th Invoke.
func (s *ScriptedLLM) Request(i int) ([]Message, []ToolSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.requests) {
		return nil, nil
	}
	return s.requests[i], s.tools[i]
}

func lastUserText(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser && messages[i].Content != "" {
			return messages[i].Content
		}
	}
	return "<empty prompt>"
}

var _ ChatModel = (*ScriptedLLM)(nil)
