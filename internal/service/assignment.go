package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellquest/internal/model"
	"wellquest/internal/recommender"
	"wellquest/internal/repository"
	"wellquest/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DailyMissionCount is how many missions one assignNew batch asks the
// recommender for. The batch may come back shorter if the catalog has
// drifted from the index.
const DailyMissionCount = 3

// ContextTextFunc produces the profile/intent digest fed to the similarity
// index. The real summarization feature is pending; the default is a fixed
// placeholder.
type ContextTextFunc func(ctx context.Context, userID int64) string

func defaultContextText(context.Context, int64) string {
	return "daily wellness missions for an active member"
}

type AssignmentRepository interface {
	UserRepository
	CatalogRepository
	MissionRecordRepository
}

type AssignmentService struct {
	repo        AssignmentRepository
	rec         Recommender
	now         func() time.Time
	contextText ContextTextFunc
}

func NewAssignmentService(repo AssignmentRepository, rec Recommender, opts ...AssignmentOption) *AssignmentService {
	s := &AssignmentService{
		repo:        repo,
		rec:         rec,
		now:         time.Now,
		contextText: defaultContextText,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type AssignmentOption func(*AssignmentService)

// WithClock pins the time source, mainly for tests.
func WithClock(now func() time.Time) AssignmentOption {
	return func(s *AssignmentService) { s.now = now }
}

func WithContextText(f ContextTextFunc) AssignmentOption {
	return func(s *AssignmentService) { s.contextText = f }
}

func (s *AssignmentService) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// GetTodaysMissions returns the caller's records for the current day,
// assigning a fresh batch only when none exist yet. Repeated calls within
// one day never re-roll.
func (s *AssignmentService) GetTodaysMissions(ctx context.Context, userID int64) ([]*model.MissionRecord, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	existing, err := s.repo.GetRecordsByUserAndDate(ctx, userID, s.today())
	if err != nil {
		return nil, fmt.Errorf("failed to get today's records: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	return s.assignNew(ctx, userID, nil)
}

// Refill re-rolls the current day, excluding every mission already assigned
// today regardless of status. The superseded batch stays in history; only
// the new batch is returned.
func (s *AssignmentService) Refill(ctx context.Context, userID int64) ([]*model.MissionRecord, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	existing, err := s.repo.GetRecordsByUserAndDate(ctx, userID, s.today())
	if err != nil {
		return nil, fmt.Errorf("failed to get today's records: %w", err)
	}

	excluded := make([]uuid.UUID, 0, len(existing))
	seen := make(map[uuid.UUID]struct{}, len(existing))
	for _, rec := range existing {
		if _, ok := seen[rec.MissionID]; ok {
			continue
		}
		seen[rec.MissionID] = struct{}{}
		excluded = append(excluded, rec.MissionID)
	}

	return s.assignNew(ctx, userID, excluded)
}

// assignNew runs one recommendation round and persists the resulting batch.
// TODO: take a per-user advisory lock so two concurrent refills cannot both
// read the old exclusion set and insert overlapping batches.
func (s *AssignmentService) assignNew(ctx context.Context, userID int64, excluded []uuid.UUID) ([]*model.MissionRecord, error) {
	log := logger.Logger()

	text := s.contextText(ctx, userID)

	ids, err := s.rec.Recommend(ctx, text, DailyMissionCount, excluded)
	if err != nil {
		if errors.Is(err, recommender.ErrNoMatchFound) {
			return nil, ErrNoMissionsAvailable
		}
		return nil, fmt.Errorf("recommendation failed: %w", err)
	}

	defs, err := s.repo.GetDefinitionsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mission definitions: %w", err)
	}

	byID := make(map[uuid.UUID]*model.MissionDefinition, len(defs))
	for _, def := range defs {
		byID[def.ID] = def
	}

	// Recommended ids with no catalog entry are dropped; the batch is
	// persisted short rather than re-queried.
	today := s.today()
	records := make([]*model.MissionRecord, 0, len(ids))
	for _, id := range ids {
		def, ok := byID[id]
		if !ok {
			continue
		}
		records = append(records, model.NewRecordFromDefinition(def, userID, today))
	}

	if len(records) < len(ids) {
		log.Warn("recommended missions missing from catalog",
			zap.Int("recommended", len(ids)),
			zap.Int("resolved", len(records)))
	}
	if len(records) == 0 {
		return nil, ErrNoMissionsAvailable
	}

	if err := s.repo.CreateRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to persist mission records: %w", err)
	}

	return records, nil
}
