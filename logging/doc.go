// Package logging provides a minimal logging interface and adapters for llmcouncil.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine and collaborators use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - CouncilLogger with run/stage context and domain helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(nil)
//	eng := engine.New(inv, func(o *engine.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
