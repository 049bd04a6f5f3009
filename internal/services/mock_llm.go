package services

import (
	"context"
	"sync"
)

// MockLLM is a mock implementation of LLMService for testing
type MockLLM struct {
	CompleteFunc func(ctx context.Context, req CompletionRequest) Result

	// Results are returned in order when CompleteFunc is nil
	Results []Result

	// Track calls for testing
	Calls []CompletionRequest

	NoAPIKey bool

	mu sync.Mutex // protects all fields above
}

// Ensure MockLLM implements LLMService interface
var _ LLMService = (*MockLLM)(nil)

// NewMockLLM creates a mock that replies with the given results in order
func NewMockLLM(results ...Result) *MockLLM {
	return &MockLLM{
		Results: results,
		Calls:   make([]CompletionRequest, 0),
	}
}

// Complete mocks a chat completion
func (m *MockLLM) Complete(ctx context.Context, req CompletionRequest) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	if len(m.Results) == 0 {
		return ErrorResult{Err: ErrUnexpectedResponse}
	}
	next := m.Results[0]
	m.Results = m.Results[1:]
	return next
}

// Configured mocks the credential check
func (m *MockLLM) Configured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.NoAPIKey
}

// CallCount returns the number of Complete calls
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request
func (m *MockLLM) LastCall() CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return CompletionRequest{}
	}
	return m.Calls[len(m.Calls)-1]
}
