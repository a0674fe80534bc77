package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/llmcouncil/core"
	"github.com/hupe1980/llmcouncil/logging"
)

func TestMemoryReporter(t *testing.T) {
	r := NewMemoryReporter()

	r.Report(core.Finding{PromptID: "p1", Kind: core.FindingRetryUsed})
	r.Report(core.Finding{PromptID: "p1", Kind: core.FindingFallbackUsed})
	r.Report(core.Finding{PromptID: "p2", Kind: core.FindingRetryUsed})

	assert.Len(t, r.Findings(), 3)
	assert.Len(t, r.ByKind(core.FindingRetryUsed), 2)
}

func TestMultiReporter(t *testing.T) {
	a := NewMemoryReporter()
	b := NewMemoryReporter()

	m := MultiReporter{a, b}
	m.Report(core.Finding{Kind: core.FindingGateStop})

	assert.Len(t, a.Findings(), 1)
	assert.Len(t, b.Findings(), 1)
}

func TestJSONLReporter(t *testing.T) {
	dir := t.TempDir()

	r, err := NewJSONLReporter(dir, logging.NoOpLogger{})
	require.NoError(t, err)

	r.Report(core.Finding{PromptID: "p1", StageID: "gate", Kind: core.FindingGateStop, Detail: "empty"})
	r.Report(core.Finding{PromptID: "p1", Kind: core.FindingRetryUsed})
	r.Report(core.Finding{Kind: core.FindingDefaultsApplied})
	require.NoError(t, r.Close())

	data, err := os.ReadFile(filepath.Join(dir, "p1.jsonl"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var f core.Finding
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &f))
	assert.Equal(t, core.FindingGateStop, f.Kind)
	assert.Equal(t, "gate", f.StageID)

	// Findings without a prompt id land in the unscoped file.
	_, err = os.Stat(filepath.Join(dir, "unscoped.jsonl"))
	assert.NoError(t, err)
}
