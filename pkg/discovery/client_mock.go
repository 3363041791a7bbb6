package discovery

import (
	"context"
)

// MockClient is a mock implementation of Client for testing
type MockClient struct {
	MockModules []string
	MockDeps    []string
	MockError   error

	// GotQueries records each query passed to Discover
	GotQueries [][]string
}

func (m *MockClient) Discover(ctx context.Context, args []string, mappingZip string) ([]string, []string, error) {
	m.GotQueries = append(m.GotQueries, args)
	return m.MockModules, m.MockDeps, m.MockError
}
