package narrative

import "context"

// MockProvider is a scripted Provider for tests.
type MockProvider struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
