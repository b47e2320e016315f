package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellquest/internal/model"
	"wellquest/internal/repository"

	"github.com/google/uuid"
)

// CatalogService is the thin admin intake for mission definitions. The
// engine itself only ever reads the catalog.
type CatalogService struct {
	repo CatalogRepository
	now  func() time.Time
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *CatalogService) CreateDefinition(ctx context.Context, def *model.MissionDefinition) (*model.MissionDefinition, error) {
	if err := validateDefinition(def); err != nil {
		return nil, err
	}

	def.ID = uuid.New()
	def.CreatedAt = s.now().UTC()

	if err := s.repo.CreateDefinition(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to create mission definition: %w", err)
	}

	return def, nil
}

// UpdateDefinition edits shared attributes and the payload of the stored
// subtype. The subtype discriminator is immutable, and later edits never
// reach already-materialized records.
func (s *CatalogService) UpdateDefinition(ctx context.Context, def *model.MissionDefinition) (*model.MissionDefinition, error) {
	existing, err := s.repo.GetDefinitionByID(ctx, def.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMissionNotFound
		}
		return nil, err
	}

	def.Subtype = existing.Subtype
	if err := validateDefinition(def); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDefinition(ctx, def); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMissionNotFound
		}
		return nil, fmt.Errorf("failed to update mission definition: %w", err)
	}

	return def, nil
}

func (s *CatalogService) GetDefinitionByID(ctx context.Context, id uuid.UUID) (*model.MissionDefinition, error) {
	def, err := s.repo.GetDefinitionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMissionNotFound
		}
		return nil, err
	}
	return def, nil
}

// validateDefinition enforces payload/subtype exclusivity: a distance
// definition carries meters only, a timer seconds only, photo and visit
// neither.
func validateDefinition(def *model.MissionDefinition) error {
	if def.Title == "" {
		return fmt.Errorf("title is required")
	}

	switch def.Subtype {
	case model.SubtypeDistance:
		if def.RequiredMeters == nil || *def.RequiredMeters <= 0 {
			return fmt.Errorf("distance mission requires positive required_meters")
		}
		def.RequiredSeconds = nil
	case model.SubtypeTimer:
		if def.RequiredSeconds == nil || *def.RequiredSeconds <= 0 {
			return fmt.Errorf("timer mission requires positive required_seconds")
		}
		def.RequiredMeters = nil
	case model.SubtypePhoto, model.SubtypeVisit:
		def.RequiredMeters = nil
		def.RequiredSeconds = nil
	default:
		return fmt.Errorf("unknown mission subtype %q", def.Subtype)
	}

	return nil
}
