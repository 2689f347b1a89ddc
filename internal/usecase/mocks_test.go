package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// MockAgentRepository
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) FindByID(ctx context.Context, id string) (*entity.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Agent), args.Error(1)
}

func (m *MockAgentRepository) FindActiveByTeams(ctx context.Context, teamIDs []string) ([]entity.Agent, error) {
	args := m.Called(ctx, teamIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Agent), args.Error(1)
}

func (m *MockAgentRepository) FindTeamsBySite(ctx context.Context, siteID int) ([]string, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAgentRepository) FindDefaultTeamByCategory(ctx context.Context, categoryID string) (string, error) {
	args := m.Called(ctx, categoryID)
	return args.String(0), args.Error(1)
}

func (m *MockAgentRepository) FindAnyActive(ctx context.Context) (*entity.Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Agent), args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindUnassigned(ctx context.Context) ([]*entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindStaleAssigned(ctx context.Context, olderThan time.Time) ([]*entity.Lead, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateAssignment(ctx context.Context, leadID, agentID, panelLink string) error {
	args := m.Called(ctx, leadID, agentID, panelLink)
	return args.Error(0)
}

func (m *MockLeadRepository) ClearAssignment(ctx context.Context, leadID string) error {
	args := m.Called(ctx, leadID)
	return args.Error(0)
}

// MockRotationRepository
type MockRotationRepository struct {
	mock.Mock
}

func (m *MockRotationRepository) Get(ctx context.Context, siteID int, categoryID string) (*entity.RotationState, error) {
	args := m.Called(ctx, siteID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RotationState), args.Error(1)
}

func (m *MockRotationRepository) Record(ctx context.Context, siteID int, categoryID, agentID, leadID string) error {
	args := m.Called(ctx, siteID, categoryID, agentID, leadID)
	return args.Error(0)
}

// MockProducer
type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishAssignment(ctx context.Context, payload queue.AssignmentPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
