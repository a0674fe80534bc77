package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(level LogLevel) (*CouncilLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: level, Format: "json", Output: &buf})
	return l, &buf
}

func TestCouncilLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelWarn)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestCouncilLogger_RunAndStageContext(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelInfo)

	l.WithRun("run-1").WithStage("delegate").Info("stage started")

	out := buf.String()
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"stage_id":"delegate"`)
}

func TestCouncilLogger_WithContextDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelInfo)

	child := l.WithContext("council", "demo")
	l.Info("parent line")
	child.Info("child line")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "council")
	assert.Contains(t, lines[1], `"council":"demo"`)
}

func TestCouncilLogger_LogModelCall(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelInfo)

	l.LogModelCall("openai/gpt-4.1", 120*time.Millisecond, false, errors.New("timeout"))

	out := buf.String()
	assert.Contains(t, out, "Model call failed")
	assert.Contains(t, out, `"model":"openai/gpt-4.1"`)
	assert.Contains(t, out, "timeout")
}

func TestCouncilLogger_LogStageExecution(t *testing.T) {
	l, buf := newBufferedLogger(LogLevelInfo)

	l.LogStageExecution("review", 3, 2*time.Second, true, nil)

	out := buf.String()
	assert.Contains(t, out, "Stage execution completed")
	assert.Contains(t, out, `"participant_count":3`)
}

func TestNoOpLoggerImplementsLogger(t *testing.T) {
	var _ Logger = NoOpLogger{}
	var _ Logger = (*CouncilLogger)(nil)
	var _ Logger = (*SlogAdapter)(nil)
}
