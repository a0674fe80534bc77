package model

import (
	"context"
	"fmt"
	"sync"
)

// Request captures one model invocation as the engine sees it: a model
// target, an optional system (persona) prompt and the assembled prompt text.
type Request struct {
	ModelID string `json:"model_id"`
	System  string `json:"system,omitempty"`
	Prompt  string `json:"prompt"`
}

// Reply is the collaborator's answer. Latency, transport-level retries and
// cost accounting are opaque to the engine; it only sees these two fields
// plus an error when the call itself could not complete.
type Reply struct {
	Text    string `json:"text"`
	Refused bool   `json:"refused"`
}

// Info contains metadata about an invoker implementation.
type Info struct {
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Invoker is the minimal interface the engine requires to call a language
// model. Implementations own timeouts and network retries; a slow or
// unresponsive model surfaces here as an error.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Reply, error)

	// Info returns information about the invoker implementation.
	Info() Info
}

// MockInvoker is a lightweight in-memory Invoker useful for tests & examples.
// Replies can be scripted per model id; unscripted models echo the prompt.
type MockInvoker struct {
	mu       sync.Mutex
	replies  map[string][]Reply
	errs     map[string]error
	requests []Request
}

// NewMockInvoker constructs an empty MockInvoker.
func NewMockInvoker() *MockInvoker {
	return &MockInvoker{
		replies: map[string][]Reply{},
		errs:    map[string]error{},
	}
}

// AddReply queues a canned reply for a model id. Queued replies are consumed
// in order; the last one repeats.
func (m *MockInvoker) AddReply(modelID, text string) *MockInvoker {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[modelID] = append(m.replies[modelID], Reply{Text: text})
	return m
}

// AddRefusal queues a refused reply for a model id.
func (m *MockInvoker) AddRefusal(modelID string) *MockInvoker {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[modelID] = append(m.replies[modelID], Reply{Refused: true})
	return m
}

// FailWith makes every invocation of a model id return err.
func (m *MockInvoker) FailWith(modelID string, err error) *MockInvoker {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[modelID] = err
	return m
}

// Invoke implements Invoker.
func (m *MockInvoker) Invoke(ctx context.Context, req Request) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if err, ok := m.errs[req.ModelID]; ok {
		return Reply{}, err
	}

	queue := m.replies[req.ModelID]
	if len(queue) == 0 {
		return Reply{Text: fmt.Sprintf("Mock response to: %s", req.Prompt)}, nil
	}
	reply := queue[0]
	if len(queue) > 1 {
		m.replies[req.ModelID] = queue[1:]
	}
	return reply, nil
}

// Info implements Invoker.
func (m *MockInvoker) Info() Info { return Info{Provider: "mock"} }

// Requests returns a copy of all requests seen so far, in order.
func (m *MockInvoker) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Invocations returns the number of invocations seen so far.
func (m *MockInvoker) Invocations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// InvocationsFor returns the number of invocations for one model id.
func (m *MockInvoker) InvocationsFor(modelID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.ModelID == modelID {
			n++
		}
	}
	return n
}
