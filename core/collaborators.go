package core

import "context"

// PersonaLoader supplies opaque text blocks for persona and council prompt
// references. Content is never interpreted by the core beyond being a
// renderable text block.
type PersonaLoader interface {
	Fetch(ctx context.Context, id string) (string, error)
}

// ConfigLoader supplies the optional raw per-prompt configuration. A nil map
// with a nil error means "absent"; the core never distinguishes absent from
// empty — both resolve through the resolver's default path.
type ConfigLoader interface {
	Load(ctx context.Context, promptID string) (map[string]any, error)
}

// PersonaLoaderFunc adapts a function to PersonaLoader.
type PersonaLoaderFunc func(ctx context.Context, id string) (string, error)

// Fetch implements PersonaLoader.
func (f PersonaLoaderFunc) Fetch(ctx context.Context, id string) (string, error) { return f(ctx, id) }

// ConfigLoaderFunc adapts a function to ConfigLoader.
type ConfigLoaderFunc func(ctx context.Context, promptID string) (map[string]any, error)

// Load implements ConfigLoader.
func (f ConfigLoaderFunc) Load(ctx context.Context, promptID string) (map[string]any, error) {
	return f(ctx, promptID)
}
