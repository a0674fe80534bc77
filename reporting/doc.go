// Package reporting provides finding sinks for deliberation runs: an
// in-memory collector for tests, a structured-log emitter and a JSONL file
// writer. Sinks observe the finding stream and never affect run outcomes.
package reporting
