package tools

import (
	"context"
	"encoding/json"

	"github.com/Amarendra0207/Agentic-Travel/pkg/agent"
	"github.com/Amarendra0207/Agentic-Travel/pkg/cache"
	"github.com/Amarendra0207/Agentic-Travel/pkg/models"
)

type cachedTool struct {
	inner agent.Tool
	store *cache.LRUCache[string]
}

// Cached memoizes successful results of tool by name and arguments. Failures are never stored.
func Cached(tool agent.Tool, store *cache.LRUCache[string]) agent.Tool {
	if store == nil {
		return tool
	}
	return &cachedTool{inner: tool, store: store}
}

// CachedProvider wraps every tool of p with Cached, sharing one store.
func CachedProvider(p agent.ToolProvider, store *cache.LRUCache[string]) agent.ToolProvider {
	inner := p.Tools()
	wrapped := make([]agent.Tool, 0, len(inner))
	for _, t := range inner {
		wrapped = append(wrapped, Cached(t, store))
	}
	return agent.ProviderOf(p.Name(), wrapped...)
}

func (c *cachedTool) Spec() models.ToolSpec { return c.inner.Spec() }

func (c *cachedTool) Invoke(ctx context.Context, req agent.ToolRequest) (agent.ToolResponse, error) {
	key, ok := c.key(req.Arguments)
	if ok {
		if content, hit := c.store.Get(key); hit {
			return agent.ToolResponse{Content: content, Metadata: map[string]string{"cache": "hit"}}, nil
		}
	}
	resp, err := c.inner.Invoke(ctx, req)
	if err != nil {
		return resp, err
	}
	if ok {
		c.store.Set(key, resp.Content)
	}
	return resp, nil
}

// key relies on encoding/json sorting map keys, so equal arguments always encode the same way.
func (c *cachedTool) key(args map[string]any) (string, bool) {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return "", false
	}
	return cache.HashKey(c.inner.Spec().Name, string(raw)), true
}
