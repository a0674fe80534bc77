// Package core defines the shared data model of the deliberation engine:
// members and their anonymized labels, per-stage responses, the append-only
// stage context, rankings, findings and the error taxonomy. It also declares
// the collaborator interfaces (persona loader, config loader, run reporter)
// that the engine consumes from the outside world.
//
// The package is dependency-light on purpose; behavior lives in the stage,
// config, ranking and engine packages.
package core
