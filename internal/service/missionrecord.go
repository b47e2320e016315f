package service

import (
	"context"
	"strings"
	"time"

	"wellquest/internal/model"

	"github.com/google/uuid"
)

type MissionRecordService struct {
	repo MissionRecordRepository
	now  func() time.Time
}

func NewMissionRecordService(repo MissionRecordRepository, opts ...MissionRecordOption) *MissionRecordService {
	s := &MissionRecordService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type MissionRecordOption func(*MissionRecordService)

func WithRecordClock(now func() time.Time) MissionRecordOption {
	return func(s *MissionRecordService) { s.now = now }
}

func (s *MissionRecordService) GetByID(ctx context.Context, recordID uuid.UUID, callerID int64) (*model.MissionRecord, error) {
	rec, err := s.repo.GetRecordByID(ctx, recordID)
	if err != nil {
		return nil, translateRecordErr(err)
	}
	if rec.UserID != callerID {
		return nil, ErrMissionForbidden
	}
	return rec, nil
}

// Start moves ASSIGNED or PAUSED to STARTED.
func (s *MissionRecordService) Start(ctx context.Context, recordID uuid.UUID, callerID int64) (*model.MissionRecord, error) {
	return s.update(ctx, recordID, callerID, func(rec *model.MissionRecord) error {
		if rec.Status != model.StatusAssigned && rec.Status != model.StatusPaused {
			return ErrInvalidMissionStatus
		}
		rec.Status = model.StatusStarted
		return nil
	})
}

// Pause moves STARTED to PAUSED.
func (s *MissionRecordService) Pause(ctx context.Context, recordID uuid.UUID, callerID int64) (*model.MissionRecord, error) {
	return s.update(ctx, recordID, callerID, func(rec *model.MissionRecord) error {
		if rec.Status != model.StatusStarted {
			return ErrInvalidMissionStatus
		}
		rec.Status = model.StatusPaused
		return nil
	})
}

// Complete moves STARTED to COMPLETED and stamps the completion time.
// COMPLETED is terminal.
func (s *MissionRecordService) Complete(ctx context.Context, recordID uuid.UUID, callerID int64) (*model.MissionRecord, error) {
	return s.update(ctx, recordID, callerID, func(rec *model.MissionRecord) error {
		if rec.Status != model.StatusStarted {
			return ErrInvalidMissionStatus
		}
		now := s.now().UTC()
		rec.Status = model.StatusCompleted
		rec.CompletedAt = &now
		return nil
	})
}

// UpdateDistanceProgress clamps the reported value into [0, target]. It is
// a no-op for non-distance records and, matching the original behavior, is
// accepted in any status.
func (s *MissionRecordService) UpdateDistanceProgress(ctx context.Context, recordID uuid.UUID, callerID int64, meters int) (*model.MissionRecord, error) {
	return s.update(ctx, recordID, callerID, func(rec *model.MissionRecord) error {
		if rec.RequiredMeters == nil {
			return nil
		}
		v := clamp(meters, *rec.RequiredMeters)
		rec.ProgressMeters = &v
		return nil
	})
}

// UpdateTimerProgress is the seconds counterpart of UpdateDistanceProgress.
func (s *MissionRecordService) UpdateTimerProgress(ctx context.Context, recordID uuid.UUID, callerID int64, seconds int) (*model.MissionRecord, error) {
	return s.update(ctx, recordID, callerID, func(rec *model.MissionRecord) error {
		if rec.RequiredSeconds == nil {
			return nil
		}
		v := clamp(seconds, *rec.RequiredSeconds)
		rec.ProgressSeconds = &v
		return nil
	})
}

type FeedbackInput struct {
	RecordID       uuid.UUID
	CallerID       int64
	Comment        string
	SelfDifficulty model.MissionDifficulty
	ImageURL       *string
}

// AddFeedback attaches post-completion feedback. Photo missions require an
// image. Calling again overwrites previous values; there is exactly one
// feedback per record.
func (s *MissionRecordService) AddFeedback(ctx context.Context, in FeedbackInput) (*model.MissionRecord, error) {
	return s.update(ctx, in.RecordID, in.CallerID, func(rec *model.MissionRecord) error {
		if rec.Status != model.StatusCompleted {
			return ErrInvalidMissionStatus
		}
		if rec.Subtype == model.SubtypePhoto && !hasImage(in.ImageURL) {
			return ErrImageRequired
		}
		if !hasImage(in.ImageURL) {
			in.ImageURL = nil
		}
		applyFeedback(rec, in)
		return nil
	})
}

// UpdateFeedback matches AddFeedback except that a photo record keeps its
// stored image when the update carries none; only initial capture demands
// the image be re-supplied.
func (s *MissionRecordService) UpdateFeedback(ctx context.Context, in FeedbackInput) (*model.MissionRecord, error) {
	return s.update(ctx, in.RecordID, in.CallerID, func(rec *model.MissionRecord) error {
		if rec.Status != model.StatusCompleted {
			return ErrInvalidMissionStatus
		}
		if !hasImage(in.ImageURL) {
			in.ImageURL = nil
		}
		applyFeedback(rec, in)
		return nil
	})
}

func applyFeedback(rec *model.MissionRecord, in FeedbackInput) {
	comment := in.Comment
	difficulty := in.SelfDifficulty
	rec.FeedbackComment = &comment
	rec.FeedbackDifficulty = &difficulty
	if in.ImageURL != nil {
		url := strings.TrimSpace(*in.ImageURL)
		rec.FeedbackImageURL = &url
	}
}

func hasImage(url *string) bool {
	return url != nil && strings.TrimSpace(*url) != ""
}

func clamp(v, target int) int {
	if v < 0 {
		return 0
	}
	if v > target {
		return target
	}
	return v
}

// update re-fetches the record under a row lock, verifies ownership and
// applies mutate. Ownership is checked on every call, never cached.
func (s *MissionRecordService) update(ctx context.Context, recordID uuid.UUID, callerID int64,
	mutate func(*model.MissionRecord) error) (*model.MissionRecord, error) {

	rec, err := s.repo.UpdateRecordLocked(ctx, recordID, func(rec *model.MissionRecord) error {
		if rec.UserID != callerID {
			return ErrMissionForbidden
		}
		return mutate(rec)
	})
	if err != nil {
		return nil, translateRecordErr(err)
	}
	return rec, nil
}
