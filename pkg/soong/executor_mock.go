package soong

import (
	"context"
)

// MockExecutor is a mock implementation of Executor for testing
type MockExecutor struct {
	MockOutput []byte
	MockError  error

	// GotVars records the variable names of the last invocation
	GotVars []string
}

func (m *MockExecutor) RunDumpvars(ctx context.Context, srcTop string, vars []string) ([]byte, error) {
	m.GotVars = vars
	return m.MockOutput, m.MockError
}
