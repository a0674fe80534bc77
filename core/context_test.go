package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageContext_AppendOnly(t *testing.T) {
	c := NewStageContext()

	require.NoError(t, c.Append("delegate", []MemberResponse{{Label: "A", Status: StatusOK}}))
	require.NoError(t, c.Append("review", []MemberResponse{{Label: "A", Status: StatusOK}}))

	// A stage is recorded at most once.
	assert.Error(t, c.Append("delegate", nil))
	assert.Equal(t, 2, c.Len())
}

func TestStageContext_OrderPreserved(t *testing.T) {
	c := NewStageContext()
	for _, id := range []string{"gate", "normalize", "delegate"} {
		require.NoError(t, c.Append(id, nil))
	}

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "gate", entries[0].StageID)
	assert.Equal(t, "normalize", entries[1].StageID)
	assert.Equal(t, "delegate", entries[2].StageID)
}

func TestStageContext_Single(t *testing.T) {
	c := NewStageContext()
	require.NoError(t, c.Append("gate", []MemberResponse{{Raw: "ok", Status: StatusOK}}))

	resp, ok := c.Single("gate")
	require.True(t, ok)
	assert.Equal(t, "ok", resp.Raw)

	_, ok = c.Single("missing")
	assert.False(t, ok)
}

func TestStageContext_MarshalJSON(t *testing.T) {
	c := NewStageContext()
	require.NoError(t, c.Append("gate", []MemberResponse{{Raw: "ok", Status: StatusOK}}))

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stage_id":"gate"`)
}
