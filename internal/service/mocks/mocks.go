// Package mocks holds hand-written testify mocks for the repository and
// recommender interfaces consumed by the services.
package mocks

import (
	"context"
	"time"

	"wellquest/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockMissionRecordRepository struct {
	mock.Mock
}

func (m *MockMissionRecordRepository) GetRecordsByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.MissionRecord, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MissionRecord), args.Error(1)
}

func (m *MockMissionRecordRepository) GetRecordByID(ctx context.Context, recordID uuid.UUID) (*model.MissionRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MissionRecord), args.Error(1)
}

func (m *MockMissionRecordRepository) CreateRecords(ctx context.Context, records []*model.MissionRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// UpdateRecordLocked mimics the real repository: the seeded return record is
// handed to mutate, a mutate error propagates and suppresses the write.
func (m *MockMissionRecordRepository) UpdateRecordLocked(ctx context.Context, recordID uuid.UUID,
	mutate func(*model.MissionRecord) error) (*model.MissionRecord, error) {

	args := m.Called(ctx, recordID, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	rec := args.Get(0).(*model.MissionRecord)
	if err := mutate(rec); err != nil {
		return nil, err
	}
	return rec, args.Error(1)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetDefinitionsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.MissionDefinition, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MissionDefinition), args.Error(1)
}

func (m *MockCatalogRepository) GetDefinitionByID(ctx context.Context, id uuid.UUID) (*model.MissionDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MissionDefinition), args.Error(1)
}

func (m *MockCatalogRepository) CreateDefinition(ctx context.Context, def *model.MissionDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockCatalogRepository) UpdateDefinition(ctx context.Context, def *model.MissionDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

// MockAssignmentRepository satisfies the combined repository surface the
// assignment service works against.
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentRepository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAssignmentRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAssignmentRepository) GetDefinitionsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.MissionDefinition, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MissionDefinition), args.Error(1)
}

func (m *MockAssignmentRepository) GetDefinitionByID(ctx context.Context, id uuid.UUID) (*model.MissionDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MissionDefinition), args.Error(1)
}

func (m *MockAssignmentRepository) CreateDefinition(ctx context.Context, def *model.MissionDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockAssignmentRepository) UpdateDefinition(ctx context.Context, def *model.MissionDefinition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockAssignmentRepository) GetRecordsByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.MissionRecord, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MissionRecord), args.Error(1)
}

func (m *MockAssignmentRepository) GetRecordByID(ctx context.Context, recordID uuid.UUID) (*model.MissionRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MissionRecord), args.Error(1)
}

func (m *MockAssignmentRepository) CreateRecords(ctx context.Context, records []*model.MissionRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockAssignmentRepository) UpdateRecordLocked(ctx context.Context, recordID uuid.UUID,
	mutate func(*model.MissionRecord) error) (*model.MissionRecord, error) {

	args := m.Called(ctx, recordID, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	rec := args.Get(0).(*model.MissionRecord)
	if err := mutate(rec); err != nil {
		return nil, err
	}
	return rec, args.Error(1)
}

type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) Recommend(ctx context.Context, contextText string, count int, excluded []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, contextText, count, excluded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
