// Package config resolves the effective per-run configuration by overlaying
// an optional, possibly partial raw configuration onto an immutable defaults
// context. Resolution is total: it never errors, and every deviation from
// the supplied configuration (unknown field, wrong shape, full default
// application, disabled prompt) is surfaced as a finding instead.
package config
