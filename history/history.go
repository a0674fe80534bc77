package history

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/llmcouncil/core"
)

// ErrNotFound is returned when no run with the requested id exists.
var ErrNotFound = errors.New("run not found")

// Record is a lightweight run summary for listings.
type Record struct {
	RunID    string
	PromptID string
	State    core.RunState
	SavedAt  time.Time
}

// Store persists completed run results. Results are treated as immutable
// once saved.
type Store interface {
	Save(res *core.RunResult) error
	Get(runID string) (*core.RunResult, error)
	ByPrompt(promptID string) []*core.RunResult
	List() []Record
}

// InMemoryStore is a volatile Store keeping results in a process local map.
// It is safe for concurrent access and best suited for tests or ephemeral
// demo servers.
type InMemoryStore struct {
	mu      sync.RWMutex
	seq     int
	runs    map[string]*core.RunResult
	records map[string]Record
	order   map[string]int
}

// NewInMemoryStore constructs an empty in-memory run store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		runs:    make(map[string]*core.RunResult),
		records: make(map[string]Record),
		order:   make(map[string]int),
	}
}

// Save stores a run result keyed by its run id.
func (s *InMemoryStore) Save(res *core.RunResult) error {
	if res == nil || res.RunID == "" {
		return errors.New("result has no run id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[res.RunID] = res
	if _, ok := s.order[res.RunID]; !ok {
		s.order[res.RunID] = s.seq
		s.seq++
	}
	s.records[res.RunID] = Record{
		RunID:    res.RunID,
		PromptID: res.PromptID,
		State:    res.State,
		SavedAt:  time.Now(),
	}
	return nil
}

// Get returns the stored result for a run id.
func (s *InMemoryStore) Get(runID string) (*core.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return res, nil
}

// ByPrompt returns every stored result for one prompt, oldest first.
func (s *InMemoryStore) ByPrompt(promptID string) []*core.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.RunResult
	for _, res := range s.runs {
		if res.PromptID == promptID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.order[out[i].RunID] < s.order[out[j].RunID]
	})
	return out
}

// List returns summaries of all stored runs, oldest first.
func (s *InMemoryStore) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.order[out[i].RunID] < s.order[out[j].RunID]
	})
	return out
}

var _ Store = (*InMemoryStore)(nil)
