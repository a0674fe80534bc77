// Package model defines the model invocation collaborator boundary: the
// Invoker interface the engine calls with an assembled prompt, the
// Request/Reply shapes crossing it, and a scriptable MockInvoker for tests
// and examples. Provider adapters live in the openai and anthropic
// subpackages.
package model
