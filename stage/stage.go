package stage

import (
	"fmt"
)

// Kind distinguishes a single-participant stage from a per-member fanout.
type Kind string

const (
	// KindSingle runs once, for the chair or another sole participant.
	KindSingle Kind = "single"
	// KindFanout runs once per configured member, concurrently.
	KindFanout Kind = "fanout_members"
)

// Role is the closed enumeration of pipeline stage roles. The orchestrator
// switches over roles; it never dispatches on stage identifier strings.
type Role int

const (
	// RoleGate is the applicability check that can halt the pipeline.
	RoleGate Role = iota + 1
	// RoleNormalize rewrites the raw query into a cleaner form.
	RoleNormalize
	// RoleDelegate collects independent member answers.
	RoleDelegate
	// RoleReview collects anonymized peer rankings.
	RoleReview
	// RoleSynthesize has the chair merge all prior outputs.
	RoleSynthesize
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleGate:
		return "gate"
	case RoleNormalize:
		return "normalize"
	case RoleDelegate:
		return "delegate"
	case RoleReview:
		return "review"
	case RoleSynthesize:
		return "synthesize"
	default:
		return "unknown"
	}
}

// Number returns the stage number used in configuration stage lists.
func (r Role) Number() int { return int(r) }

// RoleFromNumber maps a configured stage number back to its role.
func RoleFromNumber(n int) (Role, bool) {
	if n < int(RoleGate) || n > int(RoleSynthesize) {
		return 0, false
	}
	return Role(n), true
}

// Roles lists all pipeline roles in execution order.
func Roles() []Role {
	return []Role{RoleGate, RoleNormalize, RoleDelegate, RoleReview, RoleSynthesize}
}

// RenderStyle selects how a prompt part's label and body are rendered.
type RenderStyle string

const (
	// StyleMarkdown renders the label as a markdown heading.
	StyleMarkdown RenderStyle = "markdown"
	// StylePlain renders the label as a "Label:" prefix line.
	StylePlain RenderStyle = "plain"
)

// PromptPart is one declared element of a stage prompt. Order is significant
// and fixed per stage: downstream parsing depends on the query preceding the
// peer material.
type PromptPart struct {
	// Source names the input looked up at assembly time. Empty for literal parts.
	Source string
	// Label is the display heading; optional.
	Label string
	// Required makes an absent input fatal to the invocation.
	Required bool
	// Style selects the rendering of label and body.
	Style RenderStyle
	// Content, when non-empty, is a literal block used instead of a variable
	// lookup.
	Content string
}

// ContractType is a stage's declared response contract.
type ContractType string

const (
	// ContractText accepts any non-empty reply.
	ContractText ContractType = "text"
	// ContractJSON requires a structured document with declared keys.
	ContractJSON ContractType = "json"
)

// ResponseContract declares what a valid reply looks like for a stage.
type ResponseContract struct {
	Type ContractType
	// RequiredKeys must all be present for a JSON contract. Extra keys are
	// permitted.
	RequiredKeys []string
}

// Policy is a failure handling directive.
type Policy string

const (
	// PolicyRecordError marks the participant's slot failed and continues
	// with the remaining participants.
	PolicyRecordError Policy = "record_error"
	// PolicyRetryOnce re-invokes the same prompt exactly one additional time.
	PolicyRetryOnce Policy = "retry_once"
	// PolicyFallbackText accepts the raw text as-is, bypassing the contract.
	PolicyFallbackText Policy = "fallback_text"
)

func (p Policy) valid() bool {
	switch p {
	case PolicyRecordError, PolicyRetryOnce, PolicyFallbackText:
		return true
	}
	return false
}

// FailurePolicy declares how a stage recovers from refusals and contract
// violations.
type FailurePolicy struct {
	OnRefusal    Policy
	OnParseError Policy
	// OnRetryExhausted is the secondary behavior applied when a retry_once
	// policy fails again. It must not itself be retry_once.
	OnRetryExhausted Policy
}

// Definition is the immutable, validated description of one pipeline stage.
// Definitions are effectively a static state machine encoded as data: they
// are validated once at load time so invalid definitions are load-time
// errors, not run-time surprises.
type Definition struct {
	ID             string
	Version        string
	Role           Role
	Kind           Kind
	InputsRequired []string
	InputsOptional []string
	Contract       ResponseContract
	Failure        FailurePolicy
	Parts          []PromptPart
}

// Validate checks the definition's internal consistency. It is called once
// at load time for every definition the engine will execute.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("stage definition missing id")
	}
	if d.Role.String() == "unknown" {
		return fmt.Errorf("stage %s: unknown role", d.ID)
	}
	if d.Kind != KindSingle && d.Kind != KindFanout {
		return fmt.Errorf("stage %s: unknown kind %q", d.ID, d.Kind)
	}
	if d.Contract.Type != ContractText && d.Contract.Type != ContractJSON {
		return fmt.Errorf("stage %s: unknown contract type %q", d.ID, d.Contract.Type)
	}
	if d.Contract.Type == ContractJSON && len(d.Contract.RequiredKeys) == 0 {
		return fmt.Errorf("stage %s: json contract declares no required keys", d.ID)
	}
	if !d.Failure.OnRefusal.valid() {
		return fmt.Errorf("stage %s: invalid on_refusal policy %q", d.ID, d.Failure.OnRefusal)
	}
	if !d.Failure.OnParseError.valid() {
		return fmt.Errorf("stage %s: invalid on_parse_error policy %q", d.ID, d.Failure.OnParseError)
	}
	if d.Failure.OnParseError == PolicyRetryOnce {
		if d.Failure.OnRetryExhausted == PolicyRetryOnce || !d.Failure.OnRetryExhausted.valid() {
			return fmt.Errorf("stage %s: retry_once requires a terminal secondary policy", d.ID)
		}
	}
	if len(d.Parts) == 0 {
		return fmt.Errorf("stage %s: no prompt parts", d.ID)
	}

	declared := map[string]bool{}
	for _, in := range d.InputsRequired {
		declared[in] = true
	}
	for _, in := range d.InputsOptional {
		declared[in] = true
	}
	for i, p := range d.Parts {
		if p.Source == "" && p.Content == "" {
			return fmt.Errorf("stage %s: part %d has neither source nor content", d.ID, i)
		}
		if p.Source != "" && p.Content != "" {
			return fmt.Errorf("stage %s: part %d declares both source and content", d.ID, i)
		}
		if p.Source != "" && !declared[p.Source] {
			return fmt.Errorf("stage %s: part %d references undeclared input %q", d.ID, i, p.Source)
		}
	}

	return nil
}
