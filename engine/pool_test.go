package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/llmcouncil/core"
)

func members(n int) []core.Member {
	out := make([]core.Member, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, core.Member{
			Name:    string(rune('a' + i)),
			ModelID: "model-" + string(rune('a'+i)),
		})
	}
	return out
}

func TestAssignLabels_Bijection(t *testing.T) {
	labeled, err := AssignLabels(members(4), nil)
	require.NoError(t, err)

	seen := map[core.Label]bool{}
	for _, m := range labeled {
		seen[m.Label] = true
	}
	assert.Equal(t, map[core.Label]bool{"A": true, "B": true, "C": true, "D": true}, seen)
}

func TestAssignLabels_NoSeedKeepsOrder(t *testing.T) {
	ms := members(3)

	labeled, err := AssignLabels(ms, nil)
	require.NoError(t, err)

	for i, m := range labeled {
		assert.Equal(t, ms[i].Name, m.Name)
	}
}

func TestAssignLabels_SeedIsDeterministic(t *testing.T) {
	seed := int64(7)

	first, err := AssignLabels(members(6), &seed)
	require.NoError(t, err)
	second, err := AssignLabels(members(6), &seed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssignLabels_DoesNotMutateInput(t *testing.T) {
	ms := members(5)
	seed := int64(3)

	_, err := AssignLabels(ms, &seed)
	require.NoError(t, err)

	for _, m := range ms {
		assert.Empty(t, m.Label)
	}
}

func TestAssignLabels_Bounds(t *testing.T) {
	_, err := AssignLabels(nil, nil)
	assert.Error(t, err)

	_, err = AssignLabels(members(27), nil)
	assert.Error(t, err)
}

func TestPoolLabelToMember(t *testing.T) {
	p, err := newPool([]core.Member{
		{Name: "Pragmatist", ModelID: "m1"},
		{ModelID: "m2"},
	}, nil)
	require.NoError(t, err)

	mapping := p.labelToMember()
	assert.Equal(t, "Pragmatist", mapping["A"])
	// Name falls back to the model id.
	assert.Equal(t, "m2", mapping["B"])
}
