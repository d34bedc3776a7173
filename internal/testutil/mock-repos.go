package testutil

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ports/output"
)

// MockModelRepo is a mock of ModelRepository.
type MockModelRepo struct {
	mock.Mock
}

func (m *MockModelRepo) Create(ctx context.Context, model *domain.Model) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockModelRepo) GetByID(ctx context.Context, id int64) (*domain.Model, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Model), args.Error(1)
}

func (m *MockModelRepo) List(ctx context.Context, filter ports.ModelListFilter) ([]*domain.Model, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Model), args.Int(1), args.Error(2)
}

func (m *MockModelRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	args := m.Called(ctx, id, archived)
	return args.Error(0)
}

// MockVersionRepo is a mock of VersionRepository.
type MockVersionRepo struct {
	mock.Mock
}

func (m *MockVersionRepo) Create(ctx context.Context, version *domain.Version) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockVersionRepo) GetByTag(ctx context.Context, modelID int64, tag string) (*domain.Version, error) {
	args := m.Called(ctx, modelID, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Version), args.Error(1)
}

func (m *MockVersionRepo) ListByModel(ctx context.Context, filter ports.VersionListFilter) ([]*domain.Version, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Version), args.Int(1), args.Error(2)
}

func (m *MockVersionRepo) SetArchived(ctx context.Context, modelID int64, tag string, archived bool) error {
	args := m.Called(ctx, modelID, tag, archived)
	return args.Error(0)
}

// MockContentStore is a mock of ContentStore.
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) AllocateScratch(ctx context.Context) (*ports.Workspace, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Workspace), args.Error(1)
}

func (m *MockContentStore) Publish(ctx context.Context, ws *ports.Workspace, contentHash string) (ports.PublishOutcome, string, error) {
	args := m.Called(ctx, ws, contentHash)
	return args.Get(0).(ports.PublishOutcome), args.String(1), args.Error(2)
}

func (m *MockContentStore) Discard(ws *ports.Workspace) error {
	args := m.Called(ws)
	return args.Error(0)
}

func (m *MockContentStore) Open(ctx context.Context, contentHash, name string) (io.ReadCloser, int64, error) {
	args := m.Called(ctx, contentHash, name)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(int64), args.Error(2)
}

func (m *MockContentStore) List(ctx context.Context, contentHash string) ([]domain.Artifact, error) {
	args := m.Called(ctx, contentHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Artifact), args.Error(1)
}

// MockRegistrationMetrics is a mock of RegistrationMetrics.
type MockRegistrationMetrics struct {
	mock.Mock
}

func (m *MockRegistrationMetrics) ObserveRegistration(outcome string, ingestedBytes int64, elapsed time.Duration) {
	m.Called(outcome, ingestedBytes, elapsed)
}
