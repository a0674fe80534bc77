package core

import "fmt"

// ConfigError marks a structurally malformed supplied configuration. It is
// fatal at load time for the affected prompt only; batch callers skip the
// prompt and continue.
type ConfigError struct {
	PromptID string
	Reason   string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for prompt %q: %s", e.PromptID, e.Reason)
}

// MissingInputError marks a required prompt part whose named input has no
// source. It is fatal to the single stage invocation that raised it.
type MissingInputError struct {
	Part string
}

// Error implements error.
func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required prompt input %q", e.Part)
}

// RefusalError marks a reply the model collaborator flagged as refused, or a
// transport failure surfaced to the core as a terminal refusal. Recovered
// per stage policy; in a fanout stage it eliminates only one participant.
type RefusalError struct {
	ModelID string
	Cause   error
}

// Error implements error.
func (e *RefusalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model %s refused: %v", e.ModelID, e.Cause)
	}
	return fmt.Sprintf("model %s refused", e.ModelID)
}

// Unwrap exposes the transport cause, if any.
func (e *RefusalError) Unwrap() error { return e.Cause }

// ParseError marks a reply that violated its stage's response contract.
// Recovered per stage policy (retry once, fallback to raw text); exhausting
// retries without a fallback policy is fatal to the stage.
type ParseError struct {
	Reason string
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("response contract violated: %s", e.Reason)
}
