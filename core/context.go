package core

import (
	"encoding/json"
	"fmt"
)

// StageEntry is one resolved stage's output set. For single-kind stages the
// Responses slice has exactly one element.
type StageEntry struct {
	StageID   string           `json:"stage_id"`
	Responses []MemberResponse `json:"responses"`
}

// StageContext is the append-only, ordered record of resolved stage outputs
// for one run. It is single-writer: only the orchestrator appends, and only
// after a stage's barrier has resolved, so no stage ever observes a
// partially-written predecessor. Concurrent member tasks receive it
// read-only.
type StageContext struct {
	entries []StageEntry
	index   map[string]int
}

// NewStageContext creates an empty stage context.
func NewStageContext() *StageContext {
	return &StageContext{index: map[string]int{}}
}

// Append records a stage's resolved outputs. Each stage may be recorded at
// most once; entries are never rewritten.
func (c *StageContext) Append(stageID string, responses []MemberResponse) error {
	if _, ok := c.index[stageID]; ok {
		return fmt.Errorf("stage context: stage %q already recorded", stageID)
	}
	c.index[stageID] = len(c.entries)
	c.entries = append(c.entries, StageEntry{StageID: stageID, Responses: responses})
	return nil
}

// Get returns the recorded responses for a stage, if any.
func (c *StageContext) Get(stageID string) ([]MemberResponse, bool) {
	i, ok := c.index[stageID]
	if !ok {
		return nil, false
	}
	return c.entries[i].Responses, true
}

// Single returns the sole response of a single-kind stage.
func (c *StageContext) Single(stageID string) (MemberResponse, bool) {
	rs, ok := c.Get(stageID)
	if !ok || len(rs) == 0 {
		return MemberResponse{}, false
	}
	return rs[0], true
}

// Entries returns a copy of the ordered entry list for safe iteration.
func (c *StageContext) Entries() []StageEntry {
	out := make([]StageEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of resolved stages.
func (c *StageContext) Len() int { return len(c.entries) }

// MarshalJSON renders the ordered entry list, preserving resolution order.
func (c *StageContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.entries)
}
