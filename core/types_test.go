package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels(t *testing.T) {
	assert.Equal(t, []Label{"A", "B", "C"}, Labels(3))
	assert.Empty(t, Labels(0))
	assert.Equal(t, Label("Z"), Labels(26)[25])
}

func TestMemberResponseOK(t *testing.T) {
	assert.True(t, MemberResponse{Status: StatusOK}.OK())
	assert.True(t, MemberResponse{Status: StatusFallback}.OK())
	assert.False(t, MemberResponse{Status: StatusRefused}.OK())
	assert.False(t, MemberResponse{Status: StatusParseError}.OK())
}

func TestRunStateTerminal(t *testing.T) {
	for _, s := range []RunState{StateDone, StateStopped, StateFailed} {
		assert.True(t, s.Terminal(), s.String())
	}
	for _, s := range []RunState{StateGating, StateNormalizing, StateDelegating, StateReviewing, StateSynthesizing} {
		assert.False(t, s.Terminal(), s.String())
	}
}

func TestRunStateMarshalsAsName(t *testing.T) {
	data, err := json.Marshal(StateStopped)
	require.NoError(t, err)
	assert.Equal(t, `"stopped"`, string(data))
}

func TestRunResultJSONShape(t *testing.T) {
	res := RunResult{
		RunID:    "r1",
		PromptID: "p1",
		State:    StateDone,
		Final:    "answer",
		LabelToMember: map[Label]string{
			"A": "First",
		},
	}

	data, err := json.Marshal(&res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "done", decoded["state"])
	assert.Equal(t, "answer", decoded["final"])
	// Empty optional sections stay out of the document.
	assert.NotContains(t, decoded, "stop_reason")
	assert.NotContains(t, decoded, "aggregate")
}
