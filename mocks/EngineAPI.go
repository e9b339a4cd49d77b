package mocks

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/mock"
)

// EngineAPI mock of endpoint.EngineAPI
type EngineAPI struct {
	mock.Mock
}

// NewEngineAPI creates a new engine mock
func NewEngineAPI() *EngineAPI {
	return &EngineAPI{}
}

// Ping mock
func (m *EngineAPI) Ping(ctx context.Context) (types.Ping, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.Ping), args.Error(1)
}

// ServerVersion mock
func (m *EngineAPI) ServerVersion(ctx context.Context) (types.Version, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.Version), args.Error(1)
}

// Close mock
func (m *EngineAPI) Close() error {
	args := m.Called()
	return args.Error(0)
}
