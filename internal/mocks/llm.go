package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/service"
)

// MockLLMClient is a mock implementation of the LLMClient interface
type MockLLMClient struct {
	mock.Mock
}

var _ service.LLMClient = (*MockLLMClient)(nil)

func (m *MockLLMClient) Complete(ctx context.Context, messages []service.Message, jsonMode bool) (string, error) {
	args := m.Called(ctx, messages, jsonMode)
	return args.String(0), args.Error(1)
}

// Messages returns the messages passed to the nth Complete call
func (m *MockLLMClient) Messages(n int) []service.Message {
	var seen int
	for _, call := range m.Calls {
		if call.Method != "Complete" {
			continue
		}
		if seen == n {
			return call.Arguments.Get(1).([]service.Message)
		}
		seen++
	}
	return nil
}
