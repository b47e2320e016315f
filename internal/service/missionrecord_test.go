package service

import (
	"context"
	"testing"

	"wellquest/internal/model"
	"wellquest/internal/repository"
	"wellquest/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const ownerID = int64(42)

func timerRecord(status model.MissionStatus, required, progress int) *model.MissionRecord {
	return &model.MissionRecord{
		ID:              uuid.New(),
		UserID:          ownerID,
		MissionID:       uuid.New(),
		Title:           "meditate",
		Subtype:         model.SubtypeTimer,
		Status:          status,
		RequiredSeconds: &required,
		ProgressSeconds: &progress,
	}
}

func photoRecord(status model.MissionStatus) *model.MissionRecord {
	return &model.MissionRecord{
		ID:        uuid.New(),
		UserID:    ownerID,
		MissionID: uuid.New(),
		Title:     "snap a sunrise",
		Subtype:   model.SubtypePhoto,
		Status:    status,
	}
}

func newRecordService(rec *model.MissionRecord) (*MissionRecordService, *mocks.MockMissionRecordRepository) {
	repo := &mocks.MockMissionRecordRepository{}
	if rec != nil {
		repo.On("UpdateRecordLocked", mock.Anything, rec.ID, mock.Anything).Return(rec, nil)
	}
	svc := NewMissionRecordService(repo, WithRecordClock(fixedClock))
	return svc, repo
}

func TestMissionRecordService_Transitions(t *testing.T) {
	tests := []struct {
		name          string
		from          model.MissionStatus
		op            func(s *MissionRecordService, id uuid.UUID) (*model.MissionRecord, error)
		expected      model.MissionStatus
		expectedError error
	}{
		{
			name: "Start from ASSIGNED",
			from: model.StatusAssigned,
			op: func(s *MissionRecordService, id uuid.UUID) (*model.MissionRecord, error) {
				return s.Start(context.Background(), id, ownerID)
			},
			expected: model.StatusStarted,
		},
		{
			name: "Start from PAUSED",
			from: model.StatusPaused,
			op: func(s *MissionRecordService, id uuid.UUID) (*model.MissionRecord, error) {
				return s.Start(context.Background(), id, ownerID)
			},
			expected: model.StatusStarted,
		},
		{
			name: "Start from STARTED rejected",
			from: model.StatusStarted,
			op: func(s *MissionRecordService, id uuid.UUID) (*model.MissionRecord, error) {
				return s.Start(context.Background(), id, ownerID)
			},
			expectedError: ErrInvalidMissionStatus,
		},
		{
			name: "Start from COMPLETED rejected",
			from: model.StatusCompleted,
			op: func(s *MissionRecordService, id uuid.UUID) (*model.MissionRecord, error) {
				return s.Start(context.Background(), id, ownerID)
			},
			expectedError: ErrInvalidMissionStatus,
		},
		{
			name: "Pause from STARTED",
			from: model.StatusStarted,
			op: func(s *MissionRecordService, id uuid.UUID) (*model.MissionRecord, error) {
				return s.Pause(context.Background(), id, ownerID)
			},
			expected: model.StatusPaused,
		},
		{
			name: "Pause from ASSIGNED rejected",
			from: model.StatusAssigned,
			op: func(s *MissionRecordService, id uuid.UUID) (*model.MissionRecord, error) {
				return s.Pause(context.Background(), id, ownerID)
			},
			expectedError: ErrInvalidMissionStatus,
		},
		{
			name: "Complete from STARTED",
			from: model.StatusStarted,
			op: func(s *MissionRecordService, id uuid.UUID) (*model.MissionRecord, error) {
				return s.Complete(context.Background(), id, ownerID)
			},
			expected: model.StatusCompleted,
		},
		{
			name: "Complete from PAUSED rejected",
			from: model.StatusPaused,
			op: func(s *MissionRecordService, id uuid.UUID) (*model.MissionRecord, error) {
				return s.Complete(context.Background(), id, ownerID)
			},
			expectedError: ErrInvalidMissionStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := timerRecord(tt.from, 400, 0)
			svc, repo := newRecordService(rec)

			got, err := tt.op(svc, rec.ID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got.Status)
			if tt.expected == model.StatusCompleted {
				assert.NotNil(t, got.CompletedAt)
				assert.Equal(t, fixedClock().UTC(), *got.CompletedAt)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestMissionRecordService_CompleteTwiceFails(t *testing.T) {
	rec := timerRecord(model.StatusStarted, 400, 100)
	svc, _ := newRecordService(rec)

	got, err := svc.Complete(context.Background(), rec.ID, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)

	_, err = svc.Complete(context.Background(), rec.ID, ownerID)
	assert.ErrorIs(t, err, ErrInvalidMissionStatus)
}

func TestMissionRecordService_PauseStartCompleteSequence(t *testing.T) {
	rec := timerRecord(model.StatusStarted, 400, 100)
	svc, _ := newRecordService(rec)

	got, err := svc.Pause(context.Background(), rec.ID, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPaused, got.Status)

	got, err = svc.Start(context.Background(), rec.ID, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusStarted, got.Status)

	got, err = svc.Complete(context.Background(), rec.ID, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestMissionRecordService_Ownership(t *testing.T) {
	stranger := int64(777)

	rec := timerRecord(model.StatusStarted, 400, 0)
	svc, _ := newRecordService(rec)

	_, err := svc.Start(context.Background(), rec.ID, stranger)
	assert.ErrorIs(t, err, ErrMissionForbidden)

	_, err = svc.Complete(context.Background(), rec.ID, stranger)
	assert.ErrorIs(t, err, ErrMissionForbidden)

	_, err = svc.UpdateTimerProgress(context.Background(), rec.ID, stranger, 50)
	assert.ErrorIs(t, err, ErrMissionForbidden)

	_, err = svc.AddFeedback(context.Background(), FeedbackInput{
		RecordID: rec.ID, CallerID: stranger,
		Comment: "nope", SelfDifficulty: model.DifficultyEasy,
	})
	assert.ErrorIs(t, err, ErrMissionForbidden)

	// Ownership failures never depend on status.
	assert.Equal(t, model.StatusStarted, rec.Status)
}

func TestMissionRecordService_NotFound(t *testing.T) {
	repo := &mocks.MockMissionRecordRepository{}
	svc := NewMissionRecordService(repo, WithRecordClock(fixedClock))

	missing := uuid.New()
	repo.On("UpdateRecordLocked", mock.Anything, missing, mock.Anything).
		Return(nil, repository.ErrRecordNotFound)
	repo.On("GetRecordByID", mock.Anything, missing).
		Return(nil, repository.ErrRecordNotFound)

	_, err := svc.Start(context.Background(), missing, ownerID)
	assert.ErrorIs(t, err, ErrMissionNotFound)

	_, err = svc.GetByID(context.Background(), missing, ownerID)
	assert.ErrorIs(t, err, ErrMissionNotFound)
}

func TestMissionRecordService_ProgressClamping(t *testing.T) {
	tests := []struct {
		name     string
		required int
		progress int
		value    int
		expected int
	}{
		{"Overshoot clamps to target", 400, 100, 9999, 400},
		{"Exact value stored", 400, 0, 250, 250},
		{"Negative clamps to zero", 400, 100, -5, 0},
		{"Target value stored", 400, 0, 400, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := timerRecord(model.StatusStarted, tt.required, tt.progress)
			svc, _ := newRecordService(rec)

			got, err := svc.UpdateTimerProgress(context.Background(), rec.ID, ownerID, tt.value)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, *got.ProgressSeconds)
		})
	}
}

func TestMissionRecordService_ProgressIgnoresStatus(t *testing.T) {
	// The source accepts progress in any status, STARTED not required.
	for _, status := range []model.MissionStatus{
		model.StatusAssigned, model.StatusPaused, model.StatusCompleted,
	} {
		rec := timerRecord(status, 300, 0)
		svc, _ := newRecordService(rec)

		got, err := svc.UpdateTimerProgress(context.Background(), rec.ID, ownerID, 120)
		assert.NoError(t, err)
		assert.Equal(t, 120, *got.ProgressSeconds)
		assert.Equal(t, status, got.Status)
	}
}

func TestMissionRecordService_ProgressWrongSubtypeNoop(t *testing.T) {
	rec := timerRecord(model.StatusStarted, 300, 40)
	svc, _ := newRecordService(rec)

	got, err := svc.UpdateDistanceProgress(context.Background(), rec.ID, ownerID, 5000)
	assert.NoError(t, err)
	assert.Nil(t, got.ProgressMeters)
	assert.Equal(t, 40, *got.ProgressSeconds)
}

func TestMissionRecordService_Feedback(t *testing.T) {
	img := "https://cdn.example.com/sunrise.jpg"

	t.Run("Photo feedback without image fails", func(t *testing.T) {
		rec := photoRecord(model.StatusCompleted)
		svc, _ := newRecordService(rec)

		_, err := svc.AddFeedback(context.Background(), FeedbackInput{
			RecordID: rec.ID, CallerID: ownerID,
			Comment: "ok", SelfDifficulty: model.DifficultyEasy,
		})
		assert.ErrorIs(t, err, ErrImageRequired)
	})

	t.Run("Photo feedback with blank image fails", func(t *testing.T) {
		rec := photoRecord(model.StatusCompleted)
		svc, _ := newRecordService(rec)

		blank := "   "
		_, err := svc.AddFeedback(context.Background(), FeedbackInput{
			RecordID: rec.ID, CallerID: ownerID,
			Comment: "ok", SelfDifficulty: model.DifficultyEasy, ImageURL: &blank,
		})
		assert.ErrorIs(t, err, ErrImageRequired)
	})

	t.Run("Feedback before completion fails", func(t *testing.T) {
		rec := timerRecord(model.StatusStarted, 400, 100)
		svc, _ := newRecordService(rec)

		_, err := svc.AddFeedback(context.Background(), FeedbackInput{
			RecordID: rec.ID, CallerID: ownerID,
			Comment: "too early", SelfDifficulty: model.DifficultyEasy,
		})
		assert.ErrorIs(t, err, ErrInvalidMissionStatus)
	})

	t.Run("Photo feedback with image stored", func(t *testing.T) {
		rec := photoRecord(model.StatusCompleted)
		svc, _ := newRecordService(rec)

		got, err := svc.AddFeedback(context.Background(), FeedbackInput{
			RecordID: rec.ID, CallerID: ownerID,
			Comment: "great view", SelfDifficulty: model.DifficultyMedium, ImageURL: &img,
		})
		assert.NoError(t, err)
		assert.Equal(t, "great view", *got.FeedbackComment)
		assert.Equal(t, model.DifficultyMedium, *got.FeedbackDifficulty)
		assert.Equal(t, img, *got.FeedbackImageURL)
	})

	t.Run("Repeated add overwrites", func(t *testing.T) {
		rec := timerRecord(model.StatusCompleted, 400, 400)
		svc, _ := newRecordService(rec)

		_, err := svc.AddFeedback(context.Background(), FeedbackInput{
			RecordID: rec.ID, CallerID: ownerID,
			Comment: "first take", SelfDifficulty: model.DifficultyHard,
		})
		assert.NoError(t, err)

		got, err := svc.AddFeedback(context.Background(), FeedbackInput{
			RecordID: rec.ID, CallerID: ownerID,
			Comment: "second take", SelfDifficulty: model.DifficultyEasy,
		})
		assert.NoError(t, err)
		assert.Equal(t, "second take", *got.FeedbackComment)
		assert.Equal(t, model.DifficultyEasy, *got.FeedbackDifficulty)
	})

	t.Run("Update without image keeps stored photo", func(t *testing.T) {
		rec := photoRecord(model.StatusCompleted)
		svc, _ := newRecordService(rec)

		_, err := svc.AddFeedback(context.Background(), FeedbackInput{
			RecordID: rec.ID, CallerID: ownerID,
			Comment: "original", SelfDifficulty: model.DifficultyEasy, ImageURL: &img,
		})
		assert.NoError(t, err)

		got, err := svc.UpdateFeedback(context.Background(), FeedbackInput{
			RecordID: rec.ID, CallerID: ownerID,
			Comment: "edited", SelfDifficulty: model.DifficultyMedium,
		})
		assert.NoError(t, err)
		assert.Equal(t, "edited", *got.FeedbackComment)
		assert.Equal(t, img, *got.FeedbackImageURL)
	})

	t.Run("Update with new image replaces stored photo", func(t *testing.T) {
		rec := photoRecord(model.StatusCompleted)
		rec.FeedbackImageURL = &img
		svc, _ := newRecordService(rec)

		newImg := "https://cdn.example.com/sunset.jpg"
		got, err := svc.UpdateFeedback(context.Background(), FeedbackInput{
			RecordID: rec.ID, CallerID: ownerID,
			Comment: "swapped", SelfDifficulty: model.DifficultyEasy, ImageURL: &newImg,
		})
		assert.NoError(t, err)
		assert.Equal(t, newImg, *got.FeedbackImageURL)
	})
}

func TestMissionRecordService_GetByID(t *testing.T) {
	rec := timerRecord(model.StatusAssigned, 400, 0)
	repo := &mocks.MockMissionRecordRepository{}
	svc := NewMissionRecordService(repo, WithRecordClock(fixedClock))

	repo.On("GetRecordByID", mock.Anything, rec.ID).Return(rec, nil)

	got, err := svc.GetByID(context.Background(), rec.ID, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = svc.GetByID(context.Background(), rec.ID, int64(1))
	assert.ErrorIs(t, err, ErrMissionForbidden)
}
