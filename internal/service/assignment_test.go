package service

import (
	"context"
	"testing"
	"time"

	"wellquest/internal/model"
	"wellquest/internal/recommender"
	"wellquest/internal/repository"

	"wellquest/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testDay = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return time.Date(2025, 6, 10, 15, 4, 5, 0, time.UTC)
}

func meters(v int) *int { return &v }

func distanceDefinition(id uuid.UUID, title string, requiredMeters int) *model.MissionDefinition {
	return &model.MissionDefinition{
		ID:             id,
		Title:          title,
		Description:    "walk it off",
		Category:       model.CategoryFitness,
		Difficulty:     model.DifficultyEasy,
		Subtype:        model.SubtypeDistance,
		RequiredMeters: meters(requiredMeters),
	}
}

func TestAssignmentService_GetTodaysMissions(t *testing.T) {
	userID := int64(42)
	id1, id2, id3 := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name          string
		mockSetup     func(repo *mocks.MockAssignmentRepository, rec *mocks.MockRecommender)
		expectedError error
		check         func(t *testing.T, records []*model.MissionRecord)
	}{
		{
			name: "User not found",
			mockSetup: func(repo *mocks.MockAssignmentRepository, rec *mocks.MockRecommender) {
				repo.On("GetUserByID", mock.Anything, userID).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name: "Existing records returned unchanged, no re-roll",
			mockSetup: func(repo *mocks.MockAssignmentRepository, rec *mocks.MockRecommender) {
				repo.On("GetUserByID", mock.Anything, userID).
					Return(&model.User{ID: userID}, nil)
				repo.On("GetRecordsByUserAndDate", mock.Anything, userID, testDay).
					Return([]*model.MissionRecord{
						{ID: id1, UserID: userID, MissionID: id2, Status: model.StatusStarted},
					}, nil)
			},
			check: func(t *testing.T, records []*model.MissionRecord) {
				assert.Len(t, records, 1)
				assert.Equal(t, id1, records[0].ID)
				assert.Equal(t, model.StatusStarted, records[0].Status)
			},
		},
		{
			name: "Fresh assignment preserves recommendation order",
			mockSetup: func(repo *mocks.MockAssignmentRepository, rec *mocks.MockRecommender) {
				repo.On("GetUserByID", mock.Anything, userID).
					Return(&model.User{ID: userID}, nil)
				repo.On("GetRecordsByUserAndDate", mock.Anything, userID, testDay).
					Return([]*model.MissionRecord{}, nil)

				rec.On("Recommend", mock.Anything, mock.Anything, DailyMissionCount,
					[]uuid.UUID(nil)).
					Return([]uuid.UUID{id1, id2, id3}, nil)

				// Catalog answers out of recommendation order on purpose.
				repo.On("GetDefinitionsByIDs", mock.Anything, []uuid.UUID{id1, id2, id3}).
					Return([]*model.MissionDefinition{
						distanceDefinition(id3, "third", 3000),
						distanceDefinition(id1, "first", 1000),
						distanceDefinition(id2, "second", 2000),
					}, nil)

				repo.On("CreateRecords", mock.Anything, mock.MatchedBy(func(records []*model.MissionRecord) bool {
					return len(records) == 3 &&
						records[0].MissionID == id1 &&
						records[1].MissionID == id2 &&
						records[2].MissionID == id3
				})).Return(nil)
			},
			check: func(t *testing.T, records []*model.MissionRecord) {
				assert.Len(t, records, 3)
				assert.Equal(t, []uuid.UUID{id1, id2, id3},
					[]uuid.UUID{records[0].MissionID, records[1].MissionID, records[2].MissionID})
				for _, r := range records {
					assert.Equal(t, model.StatusAssigned, r.Status)
					assert.Equal(t, userID, r.UserID)
					assert.Equal(t, testDay, r.AssignedDate)
					assert.NotNil(t, r.RequiredMeters)
					assert.Equal(t, 0, *r.ProgressMeters)
					assert.Nil(t, r.RequiredSeconds)
					assert.Nil(t, r.ProgressSeconds)
				}
				assert.Equal(t, "first", records[0].Title)
			},
		},
		{
			name: "Recommender finds nothing",
			mockSetup: func(repo *mocks.MockAssignmentRepository, rec *mocks.MockRecommender) {
				repo.On("GetUserByID", mock.Anything, userID).
					Return(&model.User{ID: userID}, nil)
				repo.On("GetRecordsByUserAndDate", mock.Anything, userID, testDay).
					Return([]*model.MissionRecord{}, nil)
				rec.On("Recommend", mock.Anything, mock.Anything, DailyMissionCount,
					[]uuid.UUID(nil)).
					Return(nil, recommender.ErrNoMatchFound)
			},
			expectedError: ErrNoMissionsAvailable,
		},
		{
			name: "Catalog drift under-fills the batch",
			mockSetup: func(repo *mocks.MockAssignmentRepository, rec *mocks.MockRecommender) {
				repo.On("GetUserByID", mock.Anything, userID).
					Return(&model.User{ID: userID}, nil)
				repo.On("GetRecordsByUserAndDate", mock.Anything, userID, testDay).
					Return([]*model.MissionRecord{}, nil)
				rec.On("Recommend", mock.Anything, mock.Anything, DailyMissionCount,
					[]uuid.UUID(nil)).
					Return([]uuid.UUID{id1, id2, id3}, nil)
				repo.On("GetDefinitionsByIDs", mock.Anything, []uuid.UUID{id1, id2, id3}).
					Return([]*model.MissionDefinition{
						distanceDefinition(id2, "survivor", 500),
					}, nil)
				repo.On("CreateRecords", mock.Anything, mock.MatchedBy(func(records []*model.MissionRecord) bool {
					return len(records) == 1 && records[0].MissionID == id2
				})).Return(nil)
			},
			check: func(t *testing.T, records []*model.MissionRecord) {
				assert.Len(t, records, 1)
				assert.Equal(t, id2, records[0].MissionID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockAssignmentRepository{}
			rec := &mocks.MockRecommender{}
			svc := NewAssignmentService(repo, rec, WithClock(fixedClock))

			tt.mockSetup(repo, rec)

			records, err := svc.GetTodaysMissions(context.Background(), userID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			if tt.check != nil {
				tt.check(t, records)
			}

			repo.AssertExpectations(t)
			rec.AssertExpectations(t)
		})
	}
}

func TestAssignmentService_GetTodaysMissions_Idempotent(t *testing.T) {
	userID := int64(7)
	missionID := uuid.New()
	existing := []*model.MissionRecord{
		{ID: uuid.New(), UserID: userID, MissionID: missionID, Status: model.StatusAssigned},
	}

	repo := &mocks.MockAssignmentRepository{}
	rec := &mocks.MockRecommender{}
	svc := NewAssignmentService(repo, rec, WithClock(fixedClock))

	repo.On("GetUserByID", mock.Anything, userID).Return(&model.User{ID: userID}, nil)
	repo.On("GetRecordsByUserAndDate", mock.Anything, userID, testDay).Return(existing, nil)

	first, err := svc.GetTodaysMissions(context.Background(), userID)
	assert.NoError(t, err)
	second, err := svc.GetTodaysMissions(context.Background(), userID)
	assert.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	rec.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignmentService_Refill(t *testing.T) {
	userID := int64(42)
	oldMission1, oldMission2, oldMission3 := uuid.New(), uuid.New(), uuid.New()
	newMission := uuid.New()

	existing := []*model.MissionRecord{
		{ID: uuid.New(), UserID: userID, MissionID: oldMission1, Status: model.StatusCompleted},
		{ID: uuid.New(), UserID: userID, MissionID: oldMission2, Status: model.StatusAssigned},
		{ID: uuid.New(), UserID: userID, MissionID: oldMission3, Status: model.StatusStarted},
	}

	repo := &mocks.MockAssignmentRepository{}
	rec := &mocks.MockRecommender{}
	svc := NewAssignmentService(repo, rec, WithClock(fixedClock))

	repo.On("GetUserByID", mock.Anything, userID).Return(&model.User{ID: userID}, nil)
	repo.On("GetRecordsByUserAndDate", mock.Anything, userID, testDay).Return(existing, nil)

	rec.On("Recommend", mock.Anything, mock.Anything, DailyMissionCount,
		mock.MatchedBy(func(excluded []uuid.UUID) bool {
			if len(excluded) != 3 {
				return false
			}
			seen := map[uuid.UUID]bool{}
			for _, id := range excluded {
				seen[id] = true
			}
			return seen[oldMission1] && seen[oldMission2] && seen[oldMission3]
		})).
		Return([]uuid.UUID{newMission}, nil)

	repo.On("GetDefinitionsByIDs", mock.Anything, []uuid.UUID{newMission}).
		Return([]*model.MissionDefinition{distanceDefinition(newMission, "fresh", 800)}, nil)

	repo.On("CreateRecords", mock.Anything, mock.MatchedBy(func(records []*model.MissionRecord) bool {
		return len(records) == 1 && records[0].MissionID == newMission
	})).Return(nil)

	records, err := svc.Refill(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, newMission, records[0].MissionID)

	// Exclusion correctness: nothing in the new batch repeats a pre-refill
	// source id.
	for _, r := range records {
		assert.NotContains(t, []uuid.UUID{oldMission1, oldMission2, oldMission3}, r.MissionID)
	}

	repo.AssertExpectations(t)
	rec.AssertExpectations(t)
}
