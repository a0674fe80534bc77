package stage

// Well-known input names consumed by the built-in stage definitions.
const (
	// InputQuery is the user query (normalized when the normalize stage ran).
	InputQuery = "query"
	// InputContext is optional free-form context supplied by configuration.
	InputContext = "context"
	// InputResponses is the anonymized block of delegate-stage answers.
	InputResponses = "responses"
	// InputRankings is the block of peer-review evaluations.
	InputRankings = "rankings"
	// InputConsensus is the rendered consensus ordering.
	InputConsensus = "consensus"
)

// Gate decision JSON keys and values.
const (
	GateKeyDecision     = "decision"
	GateKeyReason       = "reason"
	GateKeyAlternatives = "alternatives"

	GateDecisionProceed = "proceed"
	GateDecisionStop    = "stop"
)

const gateInstructions = `You are the intake reviewer of a multi-model deliberation council.
Decide whether convening the full council on the question below is appropriate.
Stop the run when the question is empty, unintelligible, purely procedural, or
when a single direct answer would clearly serve the user better than a
deliberation.

Reply with a JSON object and nothing else:

{"decision": "proceed" | "stop", "reason": "<one sentence>", "alternatives": ["<alternative approach>", ...]}

When the decision is "proceed", "alternatives" may be an empty list.`

const normalizeInstructions = `Rewrite the question below into a single, clear, self-contained form
suitable to hand to several independent experts. Preserve the intent and all
constraints. Do not answer it. Reply with the rewritten question only.`

const reviewInstructions = `You are evaluating different responses to the question below. The responses
are anonymized.

Your task:
1. First, evaluate each response individually. For each response, explain what it does well and what it does poorly.
2. Then, at the very end of your response, provide a final ranking.

IMPORTANT: Your final ranking MUST be formatted EXACTLY as follows:
- Start with the line "FINAL RANKING:" (all caps, with colon)
- Then list the responses from best to worst as a numbered list
- Each line should be: number, period, space, then ONLY the response label (e.g., "1. Response A")
- Do not add any other text or explanations in the ranking section

Example of the correct format for your ENTIRE response:

Response A provides good detail on X but misses Y...
Response B is accurate but lacks depth on Z...
Response C offers the most comprehensive answer...

FINAL RANKING:
1. Response C
2. Response A
3. Response B`

const synthesizeInstructions = `You are the Chairman of a deliberation council. Multiple independent members
have answered the user's question and then ranked each other's anonymized
answers. Synthesize all of this into a single, comprehensive, accurate answer
to the original question. Consider the individual answers and their insights,
what the peer rankings reveal about answer quality, and any patterns of
agreement or disagreement. Provide one clear, well-reasoned final answer; do
not mention the internal process.`

// Builtin returns the validated built-in definition for a role. It panics on
// an unknown role; the Role enum is closed.
func Builtin(r Role) *Definition {
	def, ok := builtins[r]
	if !ok {
		panic("stage: no builtin definition for role " + r.String())
	}
	return def
}

// BuiltinSet returns the full built-in pipeline keyed by role.
func BuiltinSet() map[Role]*Definition {
	out := make(map[Role]*Definition, len(builtins))
	for r, d := range builtins {
		out[r] = d
	}
	return out
}

var builtins = map[Role]*Definition{
	RoleGate: {
		ID:             "gate",
		Version:        "1.0",
		Role:           RoleGate,
		Kind:           KindSingle,
		InputsRequired: []string{InputQuery},
		Contract: ResponseContract{
			Type:         ContractJSON,
			RequiredKeys: []string{GateKeyDecision, GateKeyReason},
		},
		Failure: FailurePolicy{
			OnRefusal:        PolicyRecordError,
			OnParseError:     PolicyRetryOnce,
			OnRetryExhausted: PolicyFallbackText,
		},
		Parts: []PromptPart{
			{Content: gateInstructions},
			{Source: InputQuery, Label: "Question", Required: true, Style: StyleMarkdown},
		},
	},
	RoleNormalize: {
		ID:             "normalize",
		Version:        "1.0",
		Role:           RoleNormalize,
		Kind:           KindSingle,
		InputsRequired: []string{InputQuery},
		Contract:       ResponseContract{Type: ContractText},
		Failure: FailurePolicy{
			OnRefusal:    PolicyRecordError,
			OnParseError: PolicyFallbackText,
		},
		Parts: []PromptPart{
			{Content: normalizeInstructions},
			{Source: InputQuery, Label: "Question", Required: true, Style: StyleMarkdown},
		},
	},
	RoleDelegate: {
		ID:             "delegate",
		Version:        "1.0",
		Role:           RoleDelegate,
		Kind:           KindFanout,
		InputsRequired: []string{InputQuery},
		InputsOptional: []string{InputContext},
		Contract:       ResponseContract{Type: ContractText},
		Failure: FailurePolicy{
			OnRefusal:    PolicyRecordError,
			OnParseError: PolicyFallbackText,
		},
		Parts: []PromptPart{
			{Source: InputQuery, Label: "Question", Required: true, Style: StyleMarkdown},
			{Source: InputContext, Label: "Additional Context", Style: StyleMarkdown},
		},
	},
	RoleReview: {
		ID:             "review",
		Version:        "1.0",
		Role:           RoleReview,
		Kind:           KindFanout,
		InputsRequired: []string{InputQuery, InputResponses},
		Contract:       ResponseContract{Type: ContractText},
		Failure: FailurePolicy{
			OnRefusal:        PolicyRecordError,
			OnParseError:     PolicyRetryOnce,
			OnRetryExhausted: PolicyFallbackText,
		},
		Parts: []PromptPart{
			{Content: reviewInstructions},
			{Source: InputQuery, Label: "Question", Required: true, Style: StyleMarkdown},
			{Source: InputResponses, Label: "Responses", Required: true, Style: StyleMarkdown},
		},
	},
	RoleSynthesize: {
		ID:             "synthesize",
		Version:        "1.0",
		Role:           RoleSynthesize,
		Kind:           KindSingle,
		InputsRequired: []string{InputQuery, InputResponses},
		InputsOptional: []string{InputRankings, InputConsensus},
		Contract:       ResponseContract{Type: ContractText},
		Failure: FailurePolicy{
			OnRefusal:    PolicyRecordError,
			OnParseError: PolicyFallbackText,
		},
		Parts: []PromptPart{
			{Content: synthesizeInstructions},
			{Source: InputQuery, Label: "Original Question", Required: true, Style: StyleMarkdown},
			{Source: InputResponses, Label: "Individual Responses", Required: true, Style: StyleMarkdown},
			{Source: InputRankings, Label: "Peer Rankings", Style: StyleMarkdown},
			{Source: InputConsensus, Label: "Consensus Order", Style: StyleMarkdown},
		},
	},
}

func init() {
	for _, d := range builtins {
		if err := d.Validate(); err != nil {
			panic(err)
		}
	}
}
