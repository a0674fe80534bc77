package core

// FindingKind classifies a finding record.
type FindingKind string

const (
	// FindingDefaultsApplied reports that no configuration was supplied and
	// the documented defaults were used in full.
	FindingDefaultsApplied FindingKind = "defaults_applied"
	// FindingUnknownField reports a supplied configuration field that is not
	// recognized; the field is kept out of the effective config.
	FindingUnknownField FindingKind = "unknown_field"
	// FindingInvalidField reports a supplied configuration field of the wrong
	// shape; its documented default is used instead.
	FindingInvalidField FindingKind = "invalid_field"
	// FindingDisabledSkip reports that the prompt is disabled and no stage
	// was invoked.
	FindingDisabledSkip FindingKind = "disabled_skip"
	// FindingParseError reports a response contract violation.
	FindingParseError FindingKind = "parse_error"
	// FindingRetryUsed reports that a stage re-invoked the same prompt once
	// after a contract violation.
	FindingRetryUsed FindingKind = "retry_used"
	// FindingFallbackUsed reports that raw text was accepted in place of the
	// structural contract.
	FindingFallbackUsed FindingKind = "fallback_used"
	// FindingRankingIncomplete reports a parsed ranking with fewer entries
	// than known labels.
	FindingRankingIncomplete FindingKind = "ranking_incomplete"
	// FindingRankingDuplicate reports a label repeated within one ranking;
	// the first occurrence is kept.
	FindingRankingDuplicate FindingKind = "ranking_duplicate"
	// FindingRefusalRecorded reports a participant eliminated by refusal.
	FindingRefusalRecorded FindingKind = "refusal_recorded"
	// FindingStageSubstituted reports that a later stage ran with a skipped
	// predecessor's input substituted by the nearest available prior output.
	FindingStageSubstituted FindingKind = "stage_substituted"
	// FindingGateStop reports a gate STOP decision.
	FindingGateStop FindingKind = "gate_stop"
)

// Finding is one record in the ordered audit stream of a run.
type Finding struct {
	PromptID string      `json:"prompt_id"`
	StageID  string      `json:"stage_id,omitempty"`
	Kind     FindingKind `json:"kind"`
	Detail   string      `json:"detail,omitempty"`
}

// Reporter receives the ordered stream of findings for a run. Implementations
// must not fail the run; errors are swallowed or logged internally.
type Reporter interface {
	Report(f Finding)
}

// NoOpReporter discards all findings.
type NoOpReporter struct{}

// Report implements Reporter.
func (NoOpReporter) Report(Finding) {}
