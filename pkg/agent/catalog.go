package agent

import (
	"fmt"
	"strings"

	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

// ToolCatalog is the ordered, name-unique set of tools offered to the model.
// It is built once and never mutated, so a single catalog can serve concurrent runs.
type ToolCatalog struct {
	tools  map[string]Tool
	specs  map[string]models.ToolSpec
	owners map[string]string
	order  []string
}

// NewToolCatalog flattens the providers' tools in the order given. Names are matched
// case-insensitively; a duplicate name, an empty name or a nil tool is a configuration error.
func NewToolCatalog(providers ...ToolProvider) (*ToolCatalog, error) {
	c := &ToolCatalog{
		tools:  make(map[string]Tool),
		specs:  make(map[string]models.ToolSpec),
		owners: make(map[string]string),
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		for _, tool := range p.Tools() {
			if err := c.register(p.Name(), tool); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *ToolCatalog) register(owner string, tool Tool) error {
	if tool == nil {
		return fmt.Errorf("provider %s: tool is nil", owner)
	}
	spec := tool.Spec()
	key := catalogKey(spec.Name)
	if key == "" {
		return fmt.Errorf("provider %s: tool name is empty", owner)
	}
	if prev, exists := c.owners[key]; exists {
		return fmt.Errorf("tool %s already registered by provider %s (duplicate from %s)", spec.Name, prev, owner)
	}
	c.tools[key] = tool
	c.specs[key] = spec
	c.owners[key] = owner
	c.order = append(c.order, key)
	return nil
}

// Lookup returns the tool and its specification if present.
func (c *ToolCatalog) Lookup(name string) (Tool, models.ToolSpec, bool) {
	key := catalogKey(name)
	tool, ok := c.tools[key]
	if !ok {
		return nil, models.ToolSpec{}, false
	}
	return tool, c.specs[key], true
}

// Owner names the provider that registered the tool.
func (c *ToolCatalog) Owner(name string) string { return c.owners[catalogKey(name)] }

// Specs returns the tool specifications in registration order.
func (c *ToolCatalog) Specs() []models.ToolSpec {
	specs := make([]models.ToolSpec, 0, len(c.order))
	for _, key := range c.order {
		specs = append(specs, c.specs[key])
	}
	return specs
}

// Tools returns the registered tools in registration order.
func (c *ToolCatalog) Tools() []Tool {
	tools := make([]Tool, 0, len(c.order))
	for _, key := range c.order {
		tools = append(tools, c.tools[key])
	}
	return tools
}

// Len reports the number of registered tools.
func (c *ToolCatalog) Len() int { return len(c.order) }
