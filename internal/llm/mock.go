package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// TextResponse cans a prose reply, the shape translate, feedback, and
// chat calls return. Token usage is estimated from the text.
func TextResponse(text string) MockResponse {
	return MockResponse{Content: json.RawMessage(text), Usage: estimateUsage(text)}
}

// JSONResponse cans a structured reply, the shape schema'd calls such
// as passage generation and batch grading return.
func JSONResponse(raw string) MockResponse {
	return MockResponse{Content: json.RawMessage(raw), Usage: estimateUsage(raw)}
}

// ErrorResponse cans a failed call.
func ErrorResponse(err error) MockResponse {
	return MockResponse{Err: err}
}

// estimateUsage fakes plausible token counts from the output length.
func estimateUsage(content string) Usage {
	u := Usage{InputTokens: 32, OutputTokens: len(strings.Fields(content))}
	u.TotalTokens = u.InputTokens + u.OutputTokens
	return u
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
