package core

import "encoding/json"

// Label is the anonymized identity of a member within a single run ("A".."Z").
// Labels form a bijection onto the first N letters of the alphabet for an
// N-member fanout and are never stable across runs.
type Label string

// Labels returns the first n alphabetic labels in order.
func Labels(n int) []Label {
	out := make([]Label, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Label(rune('A'+i)))
	}
	return out
}

// Member binds a persona reference to a model target. A Member exists only
// for the lifetime of a run; its Label is assigned once at run start.
type Member struct {
	Name       string `json:"name"`
	PersonaRef string `json:"persona_ref"`
	ModelID    string `json:"model_id"`
	Label      Label  `json:"label,omitempty"`
}

// ResponseStatus is the terminal state of one participant's stage invocation.
type ResponseStatus string

const (
	// StatusOK marks a validated, contract-conforming reply.
	StatusOK ResponseStatus = "ok"
	// StatusRefused marks a reply the model collaborator flagged as refused,
	// or a transport failure surfaced as a refusal.
	StatusRefused ResponseStatus = "refused"
	// StatusParseError marks a reply that violated the stage's response
	// contract with no rescuing policy.
	StatusParseError ResponseStatus = "parse_error"
	// StatusFallback marks a reply accepted as raw text after the structural
	// contract could not be satisfied.
	StatusFallback ResponseStatus = "fallback"
)

// MemberResponse is one participant's resolved output for one stage.
type MemberResponse struct {
	Label  Label           `json:"label,omitempty"`
	Raw    string          `json:"raw"`
	Parsed json.RawMessage `json:"parsed,omitempty"`
	// Ranking is populated for peer-review replies whose ranking block parsed.
	Ranking []Label        `json:"ranking,omitempty"`
	Status  ResponseStatus `json:"status"`
}

// OK reports whether the response reached a usable terminal state. Fallback
// responses are usable: their raw text participates in later prompts.
func (r MemberResponse) OK() bool {
	return r.Status == StatusOK || r.Status == StatusFallback
}

// Ranking is one member's ordered list of labels, best first. It may be
// incomplete relative to the set of known labels.
type Ranking struct {
	By     Label   `json:"by,omitempty"`
	Labels []Label `json:"labels"`
}

// LabelScore is one label's position in the consensus ordering.
type LabelScore struct {
	Label Label `json:"label"`
	Score int   `json:"score"`
}

// AggregateRanking is the consensus ordering over all submitted rankings,
// best first, with per-label Borda scores. The order is advisory context for
// synthesis; it does not itself decide the final answer.
type AggregateRanking struct {
	Scores []LabelScore `json:"scores"`
}

// RunState is the orchestrator's position in the fixed pipeline.
type RunState int

const (
	// StateGating runs the applicability check.
	StateGating RunState = iota
	// StateNormalizing rewrites the raw query (optional; documented no-op skip).
	StateNormalizing
	// StateDelegating fans the query out to every member.
	StateDelegating
	// StateReviewing collects anonymized peer rankings.
	StateReviewing
	// StateSynthesizing has the chair merge all prior outputs.
	StateSynthesizing
	// StateDone is the successful terminal state.
	StateDone
	// StateStopped is reached only from Gating on a STOP decision.
	StateStopped
	// StateFailed is reached from any state on a fatal stage outcome.
	StateFailed
)

// String returns the state name.
func (s RunState) String() string {
	switch s {
	case StateGating:
		return "gating"
	case StateNormalizing:
		return "normalizing"
	case StateDelegating:
		return "delegating"
	case StateReviewing:
		return "reviewing"
	case StateSynthesizing:
		return "synthesizing"
	case StateDone:
		return "done"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateStopped || s == StateFailed
}

// MarshalJSON renders the state name rather than its ordinal.
func (s RunState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// RunResult is the complete outcome of one deliberation run.
type RunResult struct {
	RunID    string   `json:"run_id"`
	PromptID string   `json:"prompt_id"`
	State    RunState `json:"state"`
	// Final holds the synthesized answer when State is StateDone and the
	// synthesize stage ran.
	Final string `json:"final,omitempty"`
	// Context is the full, ordered record of all resolved stage outputs.
	Context *StageContext `json:"context,omitempty"`
	// Findings is the ordered stream of validation / recovery records.
	Findings []Finding `json:"findings,omitempty"`
	// Aggregate is the consensus ranking, present when the review stage ran.
	Aggregate *AggregateRanking `json:"aggregate,omitempty"`
	// LabelToMember reveals the per-run anonymization for the audit trail.
	// It is never rendered into peer-facing prompts.
	LabelToMember map[Label]string `json:"label_to_member,omitempty"`
	// StopReason and Alternatives are populated on a gate STOP decision.
	StopReason   string   `json:"stop_reason,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// Stopped reports whether the run ended with a gate STOP decision.
func (r *RunResult) Stopped() bool { return r.State == StateStopped }
