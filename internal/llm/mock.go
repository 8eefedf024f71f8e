package llm

import "context"

// MockProvider returns canned responses for tests. Responses are consumed in
// order; when they run out the last one repeats. A non-nil Err is returned
// instead.
type MockProvider struct {
	Responses []string
	Err       error

	Calls   int
	Prompts []string
}

// Complete records the prompt and returns the next canned response.
func (m *MockProvider) Complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", ErrNoResponse
	}
	i := m.Calls - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}
