package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/logging"
	"github.com/hupe1980/llmcouncil/model"
	"github.com/hupe1980/llmcouncil/stage"
)

func newTestExecutor(invoker model.Invoker) (*executor, *findingLog) {
	fl := newFindingLog("p-test", nil)
	return &executor{
		invoker:  invoker,
		findings: fl,
		logger:   logging.NoOpLogger{},
	}, fl
}

func testParticipant(modelID string, label core.Label) participant {
	return participant{
		member: core.Member{Name: "member", ModelID: modelID, Label: label},
		system: "system prompt",
	}
}

func findingKinds(fl *findingLog) []core.FindingKind {
	var out []core.FindingKind
	for _, f := range fl.all() {
		out = append(out, f.Kind)
	}
	return out
}

func TestExecute_HappyPath(t *testing.T) {
	mock := model.NewMockInvoker().AddReply("m1", "a fine answer")
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), stage.Builtin(stage.RoleDelegate),
		map[string]string{stage.InputQuery: "q"}, nil, testParticipant("m1", "A"), nil)

	assert.Equal(t, core.StatusOK, resp.Status)
	assert.Equal(t, "a fine answer", resp.Raw)
	assert.Equal(t, core.Label("A"), resp.Label)
	assert.Empty(t, fl.all())
}

func TestExecute_RefusalRecorded(t *testing.T) {
	mock := model.NewMockInvoker().AddRefusal("m1")
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), stage.Builtin(stage.RoleDelegate),
		map[string]string{stage.InputQuery: "q"}, nil, testParticipant("m1", "A"), nil)

	assert.Equal(t, core.StatusRefused, resp.Status)
	assert.False(t, resp.OK())
	assert.Equal(t, []core.FindingKind{core.FindingRefusalRecorded}, findingKinds(fl))
}

func TestExecute_TransportErrorTreatedAsRefusal(t *testing.T) {
	mock := model.NewMockInvoker().FailWith("m1", errors.New("connection reset"))
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), stage.Builtin(stage.RoleDelegate),
		map[string]string{stage.InputQuery: "q"}, nil, testParticipant("m1", "A"), nil)

	assert.Equal(t, core.StatusRefused, resp.Status)
	assert.Equal(t, []core.FindingKind{core.FindingRefusalRecorded}, findingKinds(fl))
}

func TestExecute_RefusalRetriedWhenPolicySaysSo(t *testing.T) {
	def := *stage.Builtin(stage.RoleDelegate)
	def.Failure.OnRefusal = stage.PolicyRetryOnce

	mock := model.NewMockInvoker().
		AddRefusal("m1").
		AddReply("m1", "second time lucky")
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), &def,
		map[string]string{stage.InputQuery: "q"}, nil, testParticipant("m1", "A"), nil)

	assert.Equal(t, core.StatusOK, resp.Status)
	assert.Equal(t, "second time lucky", resp.Raw)
	assert.Equal(t, 2, mock.Invocations())
	assert.Equal(t, []core.FindingKind{core.FindingRetryUsed}, findingKinds(fl))
}

func TestExecute_RefusalOnRetryIsTerminal(t *testing.T) {
	def := *stage.Builtin(stage.RoleDelegate)
	def.Failure.OnRefusal = stage.PolicyRetryOnce

	mock := model.NewMockInvoker().AddRefusal("m1").AddRefusal("m1")
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), &def,
		map[string]string{stage.InputQuery: "q"}, nil, testParticipant("m1", "A"), nil)

	assert.Equal(t, core.StatusRefused, resp.Status)
	assert.Equal(t, 2, mock.Invocations())
	assert.Equal(t, []core.FindingKind{core.FindingRetryUsed, core.FindingRefusalRecorded}, findingKinds(fl))
}

func TestExecute_RefusalFallsBackWhenPolicySaysSo(t *testing.T) {
	def := *stage.Builtin(stage.RoleDelegate)
	def.Failure.OnRefusal = stage.PolicyFallbackText

	mock := model.NewMockInvoker().AddRefusal("m1")
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), &def,
		map[string]string{stage.InputQuery: "q"}, nil, testParticipant("m1", "A"), nil)

	assert.Equal(t, core.StatusFallback, resp.Status)
	assert.Equal(t, 1, mock.Invocations())
	assert.Equal(t, []core.FindingKind{core.FindingRefusalRecorded, core.FindingFallbackUsed}, findingKinds(fl))
}

func TestExecute_MissingRequiredInput(t *testing.T) {
	mock := model.NewMockInvoker()
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), stage.Builtin(stage.RoleDelegate),
		map[string]string{}, nil, testParticipant("m1", "A"), nil)

	assert.Equal(t, core.StatusParseError, resp.Status)
	assert.Zero(t, mock.Invocations())
	assert.Equal(t, []core.FindingKind{core.FindingParseError}, findingKinds(fl))
}

func TestExecute_FallbackText(t *testing.T) {
	// The normalize stage falls back to raw text on contract violations;
	// an empty reply violates the text contract.
	mock := model.NewMockInvoker().AddReply("m1", "")
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), stage.Builtin(stage.RoleNormalize),
		map[string]string{stage.InputQuery: "q"}, nil, testParticipant("m1", "A"), nil)

	assert.Equal(t, core.StatusFallback, resp.Status)
	assert.True(t, resp.OK())
	assert.Equal(t, []core.FindingKind{core.FindingParseError, core.FindingFallbackUsed}, findingKinds(fl))
}

func TestExecute_RetryOnceThenSucceed(t *testing.T) {
	mock := model.NewMockInvoker().
		AddReply("m1", "not json").
		AddReply("m1", `{"decision":"proceed","reason":"fine"}`)
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), stage.Builtin(stage.RoleGate),
		map[string]string{stage.InputQuery: "q"}, nil, testParticipant("m1", "A"), nil)

	assert.Equal(t, core.StatusOK, resp.Status)
	assert.Equal(t, 2, mock.Invocations())
	assert.Equal(t, []core.FindingKind{core.FindingParseError, core.FindingRetryUsed}, findingKinds(fl))
}

func TestExecute_RetryExhaustedFallsBack(t *testing.T) {
	mock := model.NewMockInvoker().
		AddReply("m1", "still not json").
		AddReply("m1", "again not json")
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), stage.Builtin(stage.RoleGate),
		map[string]string{stage.InputQuery: "q"}, nil, testParticipant("m1", "A"), nil)

	// Exactly one retry, never more.
	assert.Equal(t, 2, mock.Invocations())
	assert.Equal(t, core.StatusFallback, resp.Status)
	assert.Equal(t, []core.FindingKind{
		core.FindingParseError,
		core.FindingRetryUsed,
		core.FindingParseError,
		core.FindingFallbackUsed,
	}, findingKinds(fl))
}

func TestExecute_ReviewRankingParsed(t *testing.T) {
	mock := model.NewMockInvoker().AddReply("m1",
		"Response A is solid. Response B is weak.\n\nFINAL RANKING:\n1. Response A\n2. Response B")
	x, _ := newTestExecutor(mock)

	resp := x.execute(context.Background(), stage.Builtin(stage.RoleReview),
		map[string]string{stage.InputQuery: "q", stage.InputResponses: "Response A:\nfoo"},
		nil, testParticipant("m1", "C"), []core.Label{"A", "B"})

	assert.Equal(t, core.StatusOK, resp.Status)
	assert.Equal(t, []core.Label{"A", "B"}, resp.Ranking)
}

func TestExecute_ReviewMissingRankingRetriesThenFallsBack(t *testing.T) {
	mock := model.NewMockInvoker().
		AddReply("m1", "great answers all around").
		AddReply("m1", "still no ranking block")
	x, fl := newTestExecutor(mock)

	resp := x.execute(context.Background(), stage.Builtin(stage.RoleReview),
		map[string]string{stage.InputQuery: "q", stage.InputResponses: "Response A:\nfoo"},
		nil, testParticipant("m1", "C"), []core.Label{"A", "B"})

	assert.Equal(t, 2, mock.Invocations())
	assert.Equal(t, core.StatusFallback, resp.Status)
	assert.Empty(t, resp.Ranking)
	assert.Contains(t, findingKinds(fl), core.FindingRetryUsed)
}

func TestFanout_ResultsInLabelOrder(t *testing.T) {
	mock := model.NewMockInvoker().
		AddReply("m1", "first answer").
		AddReply("m2", "second answer").
		AddReply("m3", "third answer")
	x, _ := newTestExecutor(mock)

	participants := []participant{
		testParticipant("m1", "A"),
		testParticipant("m2", "B"),
		testParticipant("m3", "C"),
	}

	responses := x.fanout(context.Background(), stage.Builtin(stage.RoleDelegate),
		map[string]string{stage.InputQuery: "q"}, nil, participants, nil)

	require.Len(t, responses, 3)
	assert.Equal(t, core.Label("A"), responses[0].Label)
	assert.Equal(t, "first answer", responses[0].Raw)
	assert.Equal(t, core.Label("B"), responses[1].Label)
	assert.Equal(t, core.Label("C"), responses[2].Label)
}

func TestAllFailed(t *testing.T) {
	assert.True(t, allFailed([]core.MemberResponse{
		{Status: core.StatusRefused},
		{Status: core.StatusParseError},
	}))
	assert.False(t, allFailed([]core.MemberResponse{
		{Status: core.StatusRefused},
		{Status: core.StatusFallback},
	}))
}
