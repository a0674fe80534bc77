package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/logging"
	"github.com/hupe1980/llmcouncil/model"
	"github.com/hupe1980/llmcouncil/ranking"
	"github.com/hupe1980/llmcouncil/stage"
)

// participant is one executor target: the chair, or one labeled member,
// with its resolved system prompt.
type participant struct {
	member core.Member
	system string
}

// findingLog collects the ordered finding stream of one run and forwards
// each record to the external reporter. Safe for concurrent use; fanout
// participants report recovery findings from their own goroutines.
type findingLog struct {
	mu       sync.Mutex
	promptID string
	reporter core.Reporter
	list     []core.Finding
}

func newFindingLog(promptID string, reporter core.Reporter) *findingLog {
	if reporter == nil {
		reporter = core.NoOpReporter{}
	}
	return &findingLog{promptID: promptID, reporter: reporter}
}

func (f *findingLog) add(stageID string, kind core.FindingKind, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	finding := core.Finding{PromptID: f.promptID, StageID: stageID, Kind: kind, Detail: detail}
	f.list = append(f.list, finding)
	f.reporter.Report(finding)
}

// addResolved forwards findings raised by components that do not know the
// prompt or stage (parser findings carry only kind and detail).
func (f *findingLog) addResolved(stageID string, findings []core.Finding) {
	for _, fd := range findings {
		f.add(stageID, fd.Kind, fd.Detail)
	}
}

func (f *findingLog) all() []core.Finding {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Finding, len(f.list))
	copy(out, f.list)
	return out
}

// executor runs one stage for one participant: prompt assembly, model
// invocation, contract validation and the stage's failure policy.
type executor struct {
	invoker  model.Invoker
	findings *findingLog
	logger   logging.Logger
}

// validated is the outcome of one contract check.
type validated struct {
	parsed  json.RawMessage
	ranking []core.Label
}

// execute drives one invocation to a terminal MemberResponse. It never
// returns an error: every failure mode ends in a terminal status, and the
// stage-level fatality decision belongs to the orchestrator.
func (x *executor) execute(ctx context.Context, def *stage.Definition, inputs map[string]string, vars map[string]any, p participant, known []core.Label) core.MemberResponse {
	resp := core.MemberResponse{Label: p.member.Label}

	prompt, err := stage.Assemble(def, inputs, vars)
	if err != nil {
		// A missing required input is fatal to this invocation only.
		x.findings.add(def.ID, core.FindingParseError, err.Error())
		resp.Status = core.StatusParseError
		return resp
	}

	raw, invErr := x.invoke(ctx, p, prompt)

	var refusal *core.RefusalError
	if errors.As(invErr, &refusal) {
		switch def.Failure.OnRefusal {
		case stage.PolicyRetryOnce:
			return x.retry(ctx, def, prompt, p, known, resp)
		case stage.PolicyFallbackText:
			x.findings.add(def.ID, core.FindingRefusalRecorded, string(resp.Label))
			return x.fallback(def, resp)
		default:
			return x.applyRefusal(def, resp)
		}
	}

	resp.Raw = raw
	result, valErr := x.validate(def, raw, known)
	if valErr == nil {
		resp.Status = core.StatusOK
		resp.Parsed = result.parsed
		resp.Ranking = result.ranking
		return resp
	}

	x.findings.add(def.ID, core.FindingParseError, valErr.Error())

	switch def.Failure.OnParseError {
	case stage.PolicyFallbackText:
		return x.fallback(def, resp)
	case stage.PolicyRetryOnce:
		return x.retry(ctx, def, prompt, p, known, resp)
	default:
		resp.Status = core.StatusParseError
		return resp
	}
}

// invoke performs one model call, mapping transport failures and flagged
// refusals onto core.RefusalError.
func (x *executor) invoke(ctx context.Context, p participant, prompt string) (string, error) {
	start := time.Now()
	reply, err := x.invoker.Invoke(ctx, model.Request{
		ModelID: p.member.ModelID,
		System:  p.system,
		Prompt:  prompt,
	})
	x.logger.Debug("model invocation finished",
		"model", p.member.ModelID, "duration_ms", time.Since(start).Milliseconds(), "error", err != nil)

	if err != nil {
		return "", &core.RefusalError{ModelID: p.member.ModelID, Cause: err}
	}
	if reply.Refused {
		return "", &core.RefusalError{ModelID: p.member.ModelID}
	}
	return reply.Text, nil
}

// validate enforces the stage's response contract; for the review role it
// additionally extracts the ranking block, whose absence is a ParseError
// subject to the same failure policy.
func (x *executor) validate(def *stage.Definition, raw string, known []core.Label) (validated, error) {
	parsed, err := stage.ValidateReply(def, raw, false)
	if err != nil {
		return validated{}, err
	}

	out := validated{parsed: parsed}
	if def.Role == stage.RoleReview {
		r, findings, err := ranking.Parse(raw, known)
		if err != nil {
			return validated{}, err
		}
		x.findings.addResolved(def.ID, findings)
		out.ranking = r.Labels
	}
	return out, nil
}

func (x *executor) applyRefusal(def *stage.Definition, resp core.MemberResponse) core.MemberResponse {
	x.findings.add(def.ID, core.FindingRefusalRecorded, string(resp.Label))
	resp.Status = core.StatusRefused
	return resp
}

func (x *executor) fallback(def *stage.Definition, resp core.MemberResponse) core.MemberResponse {
	x.findings.add(def.ID, core.FindingFallbackUsed, string(resp.Label))
	resp.Status = core.StatusFallback
	return resp
}

// retry re-invokes the same prompt exactly one additional time, then applies
// the stage's documented secondary behavior.
func (x *executor) retry(ctx context.Context, def *stage.Definition, prompt string, p participant, known []core.Label, resp core.MemberResponse) core.MemberResponse {
	x.findings.add(def.ID, core.FindingRetryUsed, string(resp.Label))

	raw, invErr := x.invoke(ctx, p, prompt)

	var refusal *core.RefusalError
	if errors.As(invErr, &refusal) {
		return x.applyRefusal(def, resp)
	}

	resp.Raw = raw
	result, valErr := x.validate(def, raw, known)
	if valErr == nil {
		resp.Status = core.StatusOK
		resp.Parsed = result.parsed
		resp.Ranking = result.ranking
		return resp
	}

	x.findings.add(def.ID, core.FindingParseError, valErr.Error())

	if def.Failure.OnRetryExhausted == stage.PolicyFallbackText {
		return x.fallback(def, resp)
	}
	resp.Status = core.StatusParseError
	return resp
}
