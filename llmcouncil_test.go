package llmcouncil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/engine"
	"github.com/hupe1980/llmcouncil/model"
	"github.com/hupe1980/llmcouncil/reporting"
)

func scriptedInvoker() *model.MockInvoker {
	mock := model.NewMockInvoker().
		AddReply("chair", `{"decision":"proceed","reason":"fine"}`).
		AddReply("chair", "normalized question").
		AddReply("chair", "final answer")
	for _, m := range []string{"m1", "m2"} {
		mock.
			AddReply(m, "answer from "+m).
			AddReply(m, "FINAL RANKING:\n1. Response A\n2. Response B")
	}
	return mock
}

func demoCouncil() engine.Council {
	return engine.Council{
		ID: "demo",
		Members: []core.Member{
			{Name: "First", ModelID: "m1"},
			{Name: "Second", ModelID: "m2"},
		},
		Chair: core.Member{Name: "Chair", ModelID: "chair"},
	}
}

func TestConvene(t *testing.T) {
	reporter := reporting.NewMemoryReporter()

	c, err := New(scriptedInvoker(), func(o *Options) {
		o.Reporter = reporter
	})
	require.NoError(t, err)

	res, err := c.Convene(context.Background(), "p1", "question", demoCouncil())
	require.NoError(t, err)

	assert.Equal(t, core.StateDone, res.State)
	assert.Equal(t, "final answer", res.Final)

	// The run is retrievable from history afterwards.
	stored, err := c.History().Get(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "final answer", stored.Final)
}

func TestConveneWithConfig_Disabled(t *testing.T) {
	mock := model.NewMockInvoker()

	c, err := New(mock)
	require.NoError(t, err)

	res, err := c.ConveneWithConfig(context.Background(), "p2", "question", demoCouncil(),
		map[string]any{"enabled": false})
	require.NoError(t, err)

	assert.Equal(t, core.StateDone, res.State)
	assert.Zero(t, mock.Invocations())

	records := c.History().List()
	require.Len(t, records, 1)
	assert.Equal(t, res.RunID, records[0].RunID)
}

func TestNew_RejectsNilInvoker(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
