package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

// binding offers the whole catalog to the model on every call and normalizes failures.
type binding struct {
	model models.ChatModel
	specs []models.ToolSpec
}

func newBinding(model models.ChatModel, catalog *ToolCatalog) *binding {
	return &binding{model: model, specs: catalog.Specs()}
}

// invoke sends the full conversation in order. Any failure, including a reply that is not an
// assistant message, is reported as a *ModelUnavailableError.
func (b *binding) invoke(ctx context.Context, conversation []models.Message) (models.Message, error) {
	msg, err := b.model.Invoke(ctx, conversation, b.specs)
	if err != nil {
		return models.Message{}, &ModelUnavailableError{Provider: b.model.Name(), Err: err}
	}
	if msg.Role == "" {
		msg.Role = models.RoleAssistant
	}
	if msg.Role != models.RoleAssistant {
		return models.Message{}, &ModelUnavailableError{
			Provider: b.model.Name(),
			Err:      fmt.Errorf("malformed response: role %q", msg.Role),
		}
	}
	msg.ToolCalls = append([]models.ToolCall(nil), msg.ToolCalls...)
	seen := make(map[string]struct{}, len(msg.ToolCalls))
	for i, call := range msg.ToolCalls {
		if call.ID == "" {
			return models.Message{}, &ModelUnavailableError{
				Provider: b.model.Name(),
				Err:      errors.New("malformed response: tool call without id"),
			}
		}
		if _, dup := seen[call.ID]; dup {
			return models.Message{}, &ModelUnavailableError{
				Provider: b.model.Name(),
				Err:      fmt.Errorf("malformed response: duplicate tool call id %s", call.ID),
			}
		}
		seen[call.ID] = struct{}{}
		if call.Arguments == nil {
			msg.ToolCalls[i].Arguments = map[string]any{}
		}
	}
	return msg, nil
}
