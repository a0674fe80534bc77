package config

import (
	"fmt"
	"sort"

	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/stage"
)

// Resolver overlays an optional, possibly partial raw configuration onto the
// documented defaults. Resolution never errors: absence yields the full
// default configuration, unrecognized fields are dropped, and wrong-shaped
// fields are replaced by their defaults — each reported as a finding.
type Resolver struct {
	defaults *Defaults
}

// NewResolver creates a resolver bound to a defaults context.
func NewResolver(defaults *Defaults) *Resolver {
	if defaults == nil {
		defaults = NewDefaults()
	}
	return &Resolver{defaults: defaults}
}

// Resolve produces the effective configuration for a prompt plus the
// findings raised while resolving. A nil or empty raw map is the documented
// absent case and yields defaults with a defaults_applied finding.
func (r *Resolver) Resolve(promptID string, raw map[string]any) (CouncilConfig, []core.Finding) {
	cfg := r.defaults.Config(promptID)

	if len(raw) == 0 {
		return cfg, []core.Finding{{
			PromptID: promptID,
			Kind:     core.FindingDefaultsApplied,
			Detail:   "no configuration supplied",
		}}
	}

	var findings []core.Finding
	report := func(kind core.FindingKind, detail string) {
		findings = append(findings, core.Finding{PromptID: promptID, Kind: kind, Detail: detail})
	}

	for key, val := range raw {
		switch key {
		case "id":
			setString(&cfg.ID, key, val, report)
		case "title":
			setString(&cfg.Title, key, val, report)
		case "enabled":
			setBool(&cfg.Enabled, key, val, report)
		case "execution":
			r.resolveExecution(&cfg, val, report)
		case "inputs":
			r.resolveInputs(&cfg, val, report)
		case "output":
			r.resolveOutput(&cfg, val, report)
		default:
			report(core.FindingUnknownField, key)
		}
	}

	if cfg.Enabled {
		cfg.Stages = normalizeStages(cfg.Stages, report)
	}

	if !cfg.Enabled {
		findings = append(findings, core.Finding{
			PromptID: promptID,
			Kind:     core.FindingDisabledSkip,
			Detail:   "prompt disabled via configuration",
		})
	}

	return cfg, findings
}

func (r *Resolver) resolveExecution(cfg *CouncilConfig, val any, report func(core.FindingKind, string)) {
	section, ok := val.(map[string]any)
	if !ok {
		report(core.FindingInvalidField, "execution")
		return
	}
	for key, v := range section {
		switch key {
		case "council":
			setString(&cfg.CouncilID, "execution.council", v, report)
		case "stages":
			if list, ok := intList(v); ok {
				cfg.Stages = list
			} else {
				report(core.FindingInvalidField, "execution.stages")
			}
		case "priority":
			setInt(&cfg.Priority, "execution.priority", v, report)
		case "seed":
			if n, ok := asInt64(v); ok {
				cfg.Seed = &n
			} else {
				report(core.FindingInvalidField, "execution.seed")
			}
		default:
			report(core.FindingUnknownField, "execution."+key)
		}
	}
}

func (r *Resolver) resolveInputs(cfg *CouncilConfig, val any, report func(core.FindingKind, string)) {
	section, ok := val.(map[string]any)
	if !ok {
		report(core.FindingInvalidField, "inputs")
		return
	}
	for key, v := range section {
		switch key {
		case "variables":
			if vars, ok := stringMap(v); ok {
				cfg.Variables = vars
			} else {
				report(core.FindingInvalidField, "inputs.variables")
			}
		case "files":
			if files, ok := stringList(v); ok {
				cfg.Files = files
			} else {
				report(core.FindingInvalidField, "inputs.files")
			}
		case "context":
			setString(&cfg.Context, "inputs.context", v, report)
		default:
			report(core.FindingUnknownField, "inputs."+key)
		}
	}
}

func (r *Resolver) resolveOutput(cfg *CouncilConfig, val any, report func(core.FindingKind, string)) {
	section, ok := val.(map[string]any)
	if !ok {
		report(core.FindingInvalidField, "output")
		return
	}
	for key, v := range section {
		switch key {
		case "format":
			setString(&cfg.Output.Format, "output.format", v, report)
		case "include_audit":
			setBool(&cfg.Output.IncludeAudit, "output.include_audit", v, report)
		default:
			report(core.FindingUnknownField, "output."+key)
		}
	}
}

// normalizeStages sorts, deduplicates and bounds-checks the stage list, then
// drops stages whose hard dependency is missing: review and synthesize both
// need delegate output to exist. Synthesize without review is allowed; the
// orchestrator substitutes the nearest available prior output.
func normalizeStages(stages []int, report func(core.FindingKind, string)) []int {
	seen := map[int]bool{}
	var out []int
	for _, s := range stages {
		if _, ok := stage.RoleFromNumber(s); !ok {
			report(core.FindingInvalidField, fmt.Sprintf("execution.stages: %d out of range", s))
			continue
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Ints(out)

	if !seen[stage.RoleDelegate.Number()] {
		for _, dep := range []stage.Role{stage.RoleReview, stage.RoleSynthesize} {
			if seen[dep.Number()] {
				report(core.FindingInvalidField,
					fmt.Sprintf("execution.stages: %s requires delegate", dep))
				out = removeInt(out, dep.Number())
				delete(seen, dep.Number())
			}
		}
	}

	return out
}

func removeInt(list []int, n int) []int {
	out := list[:0]
	for _, v := range list {
		if v != n {
			out = append(out, v)
		}
	}
	return out
}

func setString(dst *string, field string, val any, report func(core.FindingKind, string)) {
	if s, ok := val.(string); ok {
		*dst = s
		return
	}
	report(core.FindingInvalidField, field)
}

func setBool(dst *bool, field string, val any, report func(core.FindingKind, string)) {
	if b, ok := val.(bool); ok {
		*dst = b
		return
	}
	report(core.FindingInvalidField, field)
}

func setInt(dst *int, field string, val any, report func(core.FindingKind, string)) {
	if n, ok := asInt64(val); ok {
		*dst = int(n)
		return
	}
	report(core.FindingInvalidField, field)
}

// asInt64 accepts the integer shapes produced by TOML and JSON decoders.
func asInt64(val any) (int64, bool) {
	switch n := val.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func intList(val any) ([]int, bool) {
	items, ok := val.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := asInt64(item)
		if !ok {
			return nil, false
		}
		out = append(out, int(n))
	}
	return out, true
}

func stringList(val any) ([]string, bool) {
	items, ok := val.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func stringMap(val any) (map[string]string, bool) {
	items, ok := val.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(items))
	for k, v := range items {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out[k] = s
	}
	return out, true
}
