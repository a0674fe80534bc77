// Package engine orchestrates multi-model deliberation runs.
//
// An Engine drives a fixed forward-only pipeline over a council of models:
// a gate check, query normalization, parallel delegate answers, parallel
// anonymized peer review and a final chair synthesis. Stage outputs
// accumulate in an append-only context; per-member failures are absorbed by
// stage failure policies and surface as findings rather than run errors.
package engine
