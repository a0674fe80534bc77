package model

import (
	"context"
	"fmt"
	"strings"
)

// Router dispatches requests to provider invokers by model id prefix.
// A model id of the form "openai/gpt-4.1" is routed to the invoker
// registered under "openai" with the prefix stripped; an unprefixed id goes
// to the default invoker.
type Router struct {
	providers map[string]Invoker
	fallback  Invoker
}

// NewRouter creates an empty router with an optional default invoker for
// unprefixed model ids.
func NewRouter(fallback Invoker) *Router {
	return &Router{
		providers: map[string]Invoker{},
		fallback:  fallback,
	}
}

// Register binds a provider prefix to an invoker. Returns the router for
// chaining.
func (r *Router) Register(provider string, invoker Invoker) *Router {
	r.providers[provider] = invoker
	return r
}

// Invoke implements Invoker.
func (r *Router) Invoke(ctx context.Context, req Request) (Reply, error) {
	provider, rest, ok := strings.Cut(req.ModelID, "/")
	if ok {
		if invoker, found := r.providers[provider]; found {
			routed := req
			routed.ModelID = rest
			return invoker.Invoke(ctx, routed)
		}
	}
	if r.fallback == nil {
		return Reply{}, fmt.Errorf("no invoker registered for model %q", req.ModelID)
	}
	return r.fallback.Invoke(ctx, req)
}

// Info implements Invoker.
func (r *Router) Info() Info {
	return Info{Provider: "router"}
}

var _ Invoker = (*Router)(nil)
