package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/llmcouncil/core"
)

func kinds(findings []core.Finding) []core.FindingKind {
	out := make([]core.FindingKind, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

func TestResolve_AbsentConfigYieldsDefaults(t *testing.T) {
	r := NewResolver(NewDefaults())

	cfg, findings := r.Resolve("p-1", nil)

	assert.Equal(t, "p-1", cfg.ID)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "ai-council", cfg.CouncilID)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Stages)
	assert.Equal(t, "markdown", cfg.Output.Format)
	assert.True(t, cfg.Output.IncludeAudit)

	require.Len(t, findings, 1)
	assert.Equal(t, core.FindingDefaultsApplied, findings[0].Kind)
	assert.Equal(t, "p-1", findings[0].PromptID)
}

func TestResolve_EmptyConfigYieldsDefaults(t *testing.T) {
	// An empty map is indistinguishable from an absent one.
	r := NewResolver(NewDefaults())

	cfg, findings := r.Resolve("p-1", map[string]any{})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Stages)
	require.Len(t, findings, 1)
	assert.Equal(t, core.FindingDefaultsApplied, findings[0].Kind)
}

func TestResolve_PartialOverlay(t *testing.T) {
	r := NewResolver(NewDefaults())

	cfg, findings := r.Resolve("p-2", map[string]any{
		"title": "Monorepo question",
		"execution": map[string]any{
			"council": "infra-council",
			"stages":  []any{3.0, 5.0, 3.0},
			"seed":    42.0,
		},
		"inputs": map[string]any{
			"variables": map[string]any{"tone": "direct"},
			"context":   "small team, Go shop",
		},
	})

	assert.Equal(t, "Monorepo question", cfg.Title)
	assert.Equal(t, "infra-council", cfg.CouncilID)
	assert.Equal(t, []int{3, 5}, cfg.Stages)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(42), *cfg.Seed)
	assert.Equal(t, "direct", cfg.Variables["tone"])
	assert.Equal(t, "small team, Go shop", cfg.Context)
	assert.Empty(t, findings)
}

func TestResolve_UnknownFieldsDroppedWithFinding(t *testing.T) {
	r := NewResolver(NewDefaults())

	cfg, findings := r.Resolve("p-3", map[string]any{
		"typo_field": true,
		"execution": map[string]any{
			"concurrency": 8,
		},
	})

	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Stages)
	assert.ElementsMatch(t,
		[]core.FindingKind{core.FindingUnknownField, core.FindingUnknownField},
		kinds(findings))
}

func TestResolve_WrongShapeFallsBackToDefault(t *testing.T) {
	r := NewResolver(NewDefaults())

	cfg, findings := r.Resolve("p-4", map[string]any{
		"enabled": "yes",
		"execution": map[string]any{
			"stages": "all",
		},
	})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Stages)
	assert.ElementsMatch(t,
		[]core.FindingKind{core.FindingInvalidField, core.FindingInvalidField},
		kinds(findings))
}

func TestResolve_OutOfRangeStageDropped(t *testing.T) {
	r := NewResolver(NewDefaults())

	cfg, findings := r.Resolve("p-5", map[string]any{
		"execution": map[string]any{
			"stages": []any{3.0, 9.0, 5.0},
		},
	})

	assert.Equal(t, []int{3, 5}, cfg.Stages)
	assert.Contains(t, kinds(findings), core.FindingInvalidField)
}

func TestResolve_ReviewWithoutDelegateDropped(t *testing.T) {
	r := NewResolver(NewDefaults())

	cfg, findings := r.Resolve("p-6", map[string]any{
		"execution": map[string]any{
			"stages": []any{1.0, 4.0, 5.0},
		},
	})

	assert.Equal(t, []int{1}, cfg.Stages)
	assert.Equal(t,
		[]core.FindingKind{core.FindingInvalidField, core.FindingInvalidField},
		kinds(findings))
}

func TestResolve_SynthesizeWithDelegateAllowedWithoutReview(t *testing.T) {
	r := NewResolver(NewDefaults())

	cfg, findings := r.Resolve("p-7", map[string]any{
		"execution": map[string]any{
			"stages": []any{3.0, 5.0},
		},
	})

	assert.Equal(t, []int{3, 5}, cfg.Stages)
	assert.Empty(t, findings)
}

func TestResolve_Disabled(t *testing.T) {
	r := NewResolver(NewDefaults())

	cfg, findings := r.Resolve("p-8", map[string]any{"enabled": false})

	assert.False(t, cfg.Enabled)
	require.Len(t, findings, 1)
	assert.Equal(t, core.FindingDisabledSkip, findings[0].Kind)
}

func TestDefaultsConfigIsACopy(t *testing.T) {
	d := NewDefaults()

	cfg := d.Config("p")
	cfg.Stages[0] = 99

	assert.Equal(t, []int{1, 2, 3, 4, 5}, d.Stages)
}
