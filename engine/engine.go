package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/hupe1980/llmcouncil/config"
	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/logging"
	"github.com/hupe1980/llmcouncil/model"
	"github.com/hupe1980/llmcouncil/ranking"
	"github.com/hupe1980/llmcouncil/stage"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Defaults is the immutable process-wide default configuration context.
	Defaults *config.Defaults
	// Stages overrides the built-in stage definitions. All five roles must
	// be present; every definition is validated at construction time.
	Stages map[stage.Role]*stage.Definition
	// ConfigLoader supplies raw per-prompt configuration when RunInput does
	// not carry one. Optional.
	ConfigLoader core.ConfigLoader
	// PersonaLoader resolves member and chair persona references. Optional;
	// without it only the built-in stage personas are used.
	PersonaLoader core.PersonaLoader
	// Reporter receives the ordered finding stream of every run.
	Reporter core.Reporter
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Council is the set of members configured for a run plus the chair role
// that gates, normalizes and synthesizes.
type Council struct {
	ID      string
	Members []core.Member
	Chair   core.Member
}

// RunInput describes one deliberation run.
type RunInput struct {
	PromptID string
	Query    string
	Council  Council
	// RawConfig, when non-nil, bypasses the engine's ConfigLoader. A nil map
	// resolves through the default path.
	RawConfig map[string]any
}

// Engine owns the fixed stage sequence, the run's accumulated state and the
// overall run outcome. Execution is sequential across stages with
// intra-stage parallelism confined to fanout stages; the engine is the sole
// writer of the stage context.
type Engine struct {
	invoker       model.Invoker
	resolver      *config.Resolver
	stages        map[stage.Role]*stage.Definition
	configLoader  core.ConfigLoader
	personaLoader core.PersonaLoader
	reporter      core.Reporter
	logger        logging.Logger
}

// New creates an Engine bound to a model invoker. Stage definitions are
// validated here, once, so invalid definitions are load-time errors rather
// than run-time surprises.
func New(invoker model.Invoker, optFns ...func(o *Options)) (*Engine, error) {
	if invoker == nil {
		return nil, fmt.Errorf("engine requires a model invoker")
	}

	opts := Options{
		Defaults: config.NewDefaults(),
		Stages:   stage.BuiltinSet(),
		Reporter: core.NoOpReporter{},
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	for _, role := range stage.Roles() {
		def, ok := opts.Stages[role]
		if !ok {
			return nil, fmt.Errorf("no stage definition for role %s", role)
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if def.Role != role {
			return nil, fmt.Errorf("stage %s registered under role %s", def.ID, role)
		}
	}

	return &Engine{
		invoker:       invoker,
		resolver:      config.NewResolver(opts.Defaults),
		stages:        opts.Stages,
		configLoader:  opts.ConfigLoader,
		personaLoader: opts.PersonaLoader,
		reporter:      opts.Reporter,
		logger:        opts.Logger,
	}, nil
}

// Run drives one deliberation through the fixed pipeline
// Gating → Normalizing → Delegating → Reviewing → Synthesizing → Done,
// with Stopped reachable only from Gating and Failed from any state.
// Transitions are strictly forward; no state is re-entered.
//
// The returned error is non-nil only for run-level failures: a structurally
// malformed configuration (core.ConfigError; skip the prompt, never the
// batch) or a fatal stage outcome. Gate stops and individual member
// failures are normal outcomes recorded on the result.
func (e *Engine) Run(ctx context.Context, in RunInput) (*core.RunResult, error) {
	raw := in.RawConfig
	if raw == nil && e.configLoader != nil {
		loaded, err := e.configLoader.Load(ctx, in.PromptID)
		if err != nil {
			return nil, &core.ConfigError{PromptID: in.PromptID, Reason: err.Error()}
		}
		raw = loaded
	}

	cfg, cfgFindings := e.resolver.Resolve(in.PromptID, raw)

	findings := newFindingLog(in.PromptID, e.reporter)
	for _, f := range cfgFindings {
		findings.add("", f.Kind, f.Detail)
	}

	res := &core.RunResult{
		RunID:    uuid.NewString(),
		PromptID: in.PromptID,
		Context:  core.NewStageContext(),
	}
	defer func() { res.Findings = findings.all() }()

	logger := e.logger
	logger.Info("run started", "run_id", res.RunID, "prompt_id", in.PromptID, "council", cfg.CouncilID, "stages", cfg.Stages)

	if !cfg.Enabled {
		// The disabled_skip directive is authoritative: no stage, no model call.
		res.State = core.StateDone
		logger.Info("run skipped: prompt disabled", "run_id", res.RunID)
		return res, nil
	}

	r, err := e.newRun(ctx, res, cfg, in, findings)
	if err != nil {
		res.State = core.StateFailed
		return res, err
	}
	res.LabelToMember = r.pool.labelToMember()

	steps := []func(context.Context, *run) error{
		e.gate,
		e.normalize,
		e.delegate,
		e.review,
		e.synthesize,
	}
	for _, step := range steps {
		if err := step(ctx, r); err != nil {
			res.State = core.StateFailed
			return res, err
		}
		if res.State.Terminal() {
			return res, nil
		}
	}

	res.State = core.StateDone
	logger.Info("run completed", "run_id", res.RunID)
	return res, nil
}

// run carries one deliberation's mutable state. All mutation happens on the
// orchestrator goroutine; fanout participants only read it.
type run struct {
	res      *core.RunResult
	cfg      config.CouncilConfig
	exec     *executor
	pool     *pool
	chair    map[stage.Role]participant
	members  map[stage.Role][]participant
	findings *findingLog
	vars     map[string]any
	inputs   map[string]string
}

func (e *Engine) newRun(ctx context.Context, res *core.RunResult, cfg config.CouncilConfig, in RunInput, findings *findingLog) (*run, error) {
	p, err := newPool(in.Council.Members, cfg.Seed)
	if err != nil {
		return nil, err
	}

	personas, err := e.fetchPersonas(ctx, in.Council)
	if err != nil {
		return nil, err
	}

	chair := map[stage.Role]participant{}
	for _, role := range []stage.Role{stage.RoleGate, stage.RoleNormalize, stage.RoleSynthesize} {
		chair[role] = participant{
			member: in.Council.Chair,
			system: composeSystem(role, personas[in.Council.Chair.PersonaRef]),
		}
	}

	members := map[stage.Role][]participant{}
	for _, role := range []stage.Role{stage.RoleDelegate, stage.RoleReview} {
		ps := make([]participant, 0, len(p.members))
		for _, m := range p.members {
			ps = append(ps, participant{member: m, system: composeSystem(role, personas[m.PersonaRef])})
		}
		members[role] = ps
	}

	vars := map[string]any{
		"prompt_id": cfg.ID,
		"title":     cfg.Title,
		"council":   cfg.CouncilID,
	}
	for k, v := range cfg.Variables {
		vars[k] = v
	}

	inputs := map[string]string{
		stage.InputQuery:   in.Query,
		stage.InputContext: cfg.Context,
	}

	return &run{
		res:      res,
		cfg:      cfg,
		exec:     &executor{invoker: e.invoker, findings: findings, logger: e.logger},
		pool:     p,
		chair:    chair,
		members:  members,
		findings: findings,
		vars:     vars,
		inputs:   inputs,
	}, nil
}

// fetchPersonas resolves every distinct persona reference once at run start.
// A reference that cannot be fetched fails the run before any model call.
func (e *Engine) fetchPersonas(ctx context.Context, c Council) (map[string]string, error) {
	out := map[string]string{}
	refs := []string{c.Chair.PersonaRef}
	for _, m := range c.Members {
		refs = append(refs, m.PersonaRef)
	}
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, done := out[ref]; done {
			continue
		}
		if e.personaLoader == nil {
			return nil, fmt.Errorf("persona %q referenced but no persona loader configured", ref)
		}
		text, err := e.personaLoader.Fetch(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("fetch persona %q: %w", ref, err)
		}
		out[ref] = text
	}
	return out, nil
}

// composeSystem layers a loaded persona on top of the built-in stage persona.
func composeSystem(role stage.Role, persona string) string {
	base := stage.DefaultPersona(role)
	if persona == "" {
		return base
	}
	if base == "" {
		return persona
	}
	return base + "\n\n" + persona
}

func (e *Engine) gate(ctx context.Context, r *run) error {
	r.res.State = core.StateGating
	if !r.cfg.HasStage(stage.RoleGate.Number()) {
		return nil
	}

	def := e.stages[stage.RoleGate]
	resp := r.exec.execute(ctx, def, r.inputs, r.vars, r.chair[stage.RoleGate], nil)
	if err := r.res.Context.Append(def.ID, []core.MemberResponse{resp}); err != nil {
		return err
	}

	// Only an explicit, well-formed STOP halts the run; an unparseable or
	// refused gate fails open and the pipeline proceeds.
	if resp.Status != core.StatusOK || len(resp.Parsed) == 0 {
		return nil
	}

	decision := gjson.GetBytes(resp.Parsed, stage.GateKeyDecision).String()
	if decision != stage.GateDecisionStop {
		return nil
	}

	reason := gjson.GetBytes(resp.Parsed, stage.GateKeyReason).String()
	var alternatives []string
	for _, alt := range gjson.GetBytes(resp.Parsed, stage.GateKeyAlternatives).Array() {
		alternatives = append(alternatives, alt.String())
	}

	r.findings.add(def.ID, core.FindingGateStop, reason)
	r.res.State = core.StateStopped
	r.res.StopReason = reason
	r.res.Alternatives = alternatives
	e.logger.Info("run stopped by gate", "run_id", r.res.RunID, "reason", reason)
	return nil
}

func (e *Engine) normalize(ctx context.Context, r *run) error {
	r.res.State = core.StateNormalizing
	if !r.cfg.HasStage(stage.RoleNormalize.Number()) {
		// Documented no-op skip: the raw, un-normalized query substitutes
		// for the stage output.
		return nil
	}

	def := e.stages[stage.RoleNormalize]
	resp := r.exec.execute(ctx, def, r.inputs, r.vars, r.chair[stage.RoleNormalize], nil)
	if err := r.res.Context.Append(def.ID, []core.MemberResponse{resp}); err != nil {
		return err
	}

	if normalized := strings.TrimSpace(resp.Raw); resp.OK() && normalized != "" {
		r.inputs[stage.InputQuery] = normalized
	}
	return nil
}

func (e *Engine) delegate(ctx context.Context, r *run) error {
	r.res.State = core.StateDelegating
	if !r.cfg.HasStage(stage.RoleDelegate.Number()) {
		return nil
	}

	def := e.stages[stage.RoleDelegate]
	responses := r.exec.fanout(ctx, def, r.inputs, r.vars, r.members[stage.RoleDelegate], nil)
	if err := r.res.Context.Append(def.ID, responses); err != nil {
		return err
	}

	if allFailed(responses) {
		return fmt.Errorf("stage %s: no surviving participants", def.ID)
	}

	r.inputs[stage.InputResponses] = renderResponses(responses)
	return nil
}

func (e *Engine) review(ctx context.Context, r *run) error {
	r.res.State = core.StateReviewing
	if !r.cfg.HasStage(stage.RoleReview.Number()) {
		return nil
	}

	def := e.stages[stage.RoleReview]
	known := survivingLabels(r.res.Context, e.stages[stage.RoleDelegate].ID)

	responses := r.exec.fanout(ctx, def, r.inputs, r.vars, r.members[stage.RoleReview], known)
	if err := r.res.Context.Append(def.ID, responses); err != nil {
		return err
	}

	if allFailed(responses) {
		return fmt.Errorf("stage %s: no surviving participants", def.ID)
	}

	var rankings []core.Ranking
	for _, resp := range responses {
		if resp.Status == core.StatusOK && len(resp.Ranking) > 0 {
			rankings = append(rankings, core.Ranking{By: resp.Label, Labels: resp.Ranking})
		}
	}

	agg := ranking.Aggregate(rankings, known)
	r.res.Aggregate = &agg

	r.inputs[stage.InputRankings] = renderRankings(responses)
	r.inputs[stage.InputConsensus] = renderConsensus(agg)
	return nil
}

func (e *Engine) synthesize(ctx context.Context, r *run) error {
	r.res.State = core.StateSynthesizing
	if !r.cfg.HasStage(stage.RoleSynthesize.Number()) {
		return nil
	}

	def := e.stages[stage.RoleSynthesize]

	// Substitution policy for a narrowed run: when review was skipped the
	// synthesize prompt's optional review inputs are omitted and the chair
	// works from the delegate outputs alone.
	if !r.cfg.HasStage(stage.RoleReview.Number()) {
		r.findings.add(def.ID, core.FindingStageSubstituted, "review skipped; synthesizing from delegate outputs only")
	}

	resp := r.exec.execute(ctx, def, r.inputs, r.vars, r.chair[stage.RoleSynthesize], nil)
	if err := r.res.Context.Append(def.ID, []core.MemberResponse{resp}); err != nil {
		return err
	}

	if !resp.OK() {
		return fmt.Errorf("stage %s: sole participant failed with status %s", def.ID, resp.Status)
	}

	r.res.Final = resp.Raw
	return nil
}

// renderResponses renders the anonymized block of usable delegate answers,
// in label order. Underlying member identity never appears here.
func renderResponses(responses []core.MemberResponse) string {
	var sections []string
	for _, resp := range responses {
		if !resp.OK() {
			continue
		}
		sections = append(sections, fmt.Sprintf("Response %s:\n%s", resp.Label, strings.TrimSpace(resp.Raw)))
	}
	return strings.Join(sections, "\n\n")
}

// renderRankings renders the peer evaluations for the chair, keyed by
// reviewer label.
func renderRankings(responses []core.MemberResponse) string {
	var sections []string
	for _, resp := range responses {
		if !resp.OK() {
			continue
		}
		sections = append(sections, fmt.Sprintf("Reviewer %s:\n%s", resp.Label, strings.TrimSpace(resp.Raw)))
	}
	return strings.Join(sections, "\n\n")
}

func renderConsensus(agg core.AggregateRanking) string {
	var lines []string
	for i, s := range agg.Scores {
		lines = append(lines, fmt.Sprintf("%d. Response %s (score %d)", i+1, s.Label, s.Score))
	}
	return strings.Join(lines, "\n")
}

// survivingLabels lists the labels whose delegate invocation ended usable,
// in the delegate stage's output order.
func survivingLabels(sctx *core.StageContext, delegateID string) []core.Label {
	responses, ok := sctx.Get(delegateID)
	if !ok {
		return nil
	}
	var out []core.Label
	for _, resp := range responses {
		if resp.OK() {
			out = append(out, resp.Label)
		}
	}
	return out
}
