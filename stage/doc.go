// Package stage declares the immutable, load-time-validated stage
// definitions driving the deliberation pipeline, plus the two pure
// per-invocation operations on them: prompt assembly from declared parts and
// response contract validation.
//
// The five built-in definitions (gate, normalize, delegate, review,
// synthesize) live in builtin.go; custom definitions can be loaded from
// metadata files and must pass Definition.Validate before execution.
package stage
