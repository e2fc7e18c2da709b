package llm

import (
	"context"
	"sync"
)

// MockClient is a test double for the LLM Client interface.
// It can also be used for dry-run mode.
//
// Resolution order per call: Handler, then the next queued entry in
// Responses, then Response/Err.
type MockClient struct {
	Response  *Response
	Err       error
	Responses []string                              // consumed in order
	Handler   func(prompt string) (*Response, error) // overrides everything when set
	Calls     []string                              // records prompts sent

	mu sync.Mutex
}

// NewDryRun returns a client that answers every prompt with an empty JSON
// array, so no advisor is consulted and nothing is retained. The recorded
// Calls show what would have been sent.
func NewDryRun() *MockClient {
	return &MockClient{Response: &Response{Content: "[]", Provider: "dry-run"}}
}

// Complete records the call and returns the mock response.
func (m *MockClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	handler := m.Handler
	var queued *Response
	if len(m.Responses) > 0 {
		queued = &Response{Content: m.Responses[0], Provider: "mock"}
		m.Responses = m.Responses[1:]
	}
	m.mu.Unlock()

	if handler != nil {
		return handler(prompt)
	}
	if queued != nil {
		return queued, nil
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response == nil {
		return &Response{Provider: "mock"}, nil
	}
	return m.Response, nil
}

// CallCount returns the number of prompts received so far.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Prompts returns a copy of the recorded prompts.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}
