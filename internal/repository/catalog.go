package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wellquest/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type missionDefinition struct {
	ID              uuid.UUID `db:"id"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Category        string    `db:"category"`
	Difficulty      string    `db:"difficulty"`
	Subtype         string    `db:"subtype"`
	RequiredMeters  *int      `db:"required_meters"`
	RequiredSeconds *int      `db:"required_seconds"`
	CreatedAt       time.Time `db:"created_at"`
}

func (d *missionDefinition) toModel() *model.MissionDefinition {
	return &model.MissionDefinition{
		ID:              d.ID,
		Title:           d.Title,
		Description:     d.Description,
		Category:        model.MissionCategory(d.Category),
		Difficulty:      model.MissionDifficulty(d.Difficulty),
		Subtype:         model.MissionSubtype(d.Subtype),
		RequiredMeters:  d.RequiredMeters,
		RequiredSeconds: d.RequiredSeconds,
		CreatedAt:       d.CreatedAt,
	}
}

// GetDefinitionsByIDs bulk-fetches catalog entries. Ids that no longer
// resolve are absent from the result; callers must not assume a 1:1 count
// match with the requested set.
func (r *Repository) GetDefinitionsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.MissionDefinition, error) {
	if len(ids) == 0 {
		return []*model.MissionDefinition{}, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	query, args, err := squirrel.
		Select("id", "title", "description", "category", "difficulty",
			"subtype", "required_meters", "required_seconds", "created_at").
		From("mission_definitions").
		Where(squirrel.Expr("id = ANY(?)", pq.Array(strIDs))).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build definitions query: %w", err)
	}

	var defs []*missionDefinition
	err = r.db.SelectContext(ctx, &defs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission definitions: %w", err)
	}

	result := make([]*model.MissionDefinition, len(defs))
	for i, d := range defs {
		result[i] = d.toModel()
	}

	return result, nil
}

func (r *Repository) GetDefinitionByID(ctx context.Context, id uuid.UUID) (*model.MissionDefinition, error) {
	var def missionDefinition
	query, args, err := squirrel.
		Select("id", "title", "description", "category", "difficulty",
			"subtype", "required_meters", "required_seconds", "created_at").
		From("mission_definitions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &def, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return def.toModel(), nil
}

func (r *Repository) CreateDefinition(ctx context.Context, def *model.MissionDefinition) error {
	query, args, err := squirrel.
		Insert("mission_definitions").
		SetMap(map[string]interface{}{
			"id":               def.ID,
			"title":            def.Title,
			"description":      def.Description,
			"category":         def.Category,
			"difficulty":       def.Difficulty,
			"subtype":          def.Subtype,
			"required_meters":  def.RequiredMeters,
			"required_seconds": def.RequiredSeconds,
			"created_at":       def.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build definition insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert mission definition: %w", err)
	}

	return nil
}

// UpdateDefinition edits the shared attributes and the payload value of the
// definition's own subtype. The subtype itself is immutable.
func (r *Repository) UpdateDefinition(ctx context.Context, def *model.MissionDefinition) error {
	query, args, err := squirrel.
		Update("mission_definitions").
		SetMap(map[string]interface{}{
			"title":            def.Title,
			"description":      def.Description,
			"category":         def.Category,
			"difficulty":       def.Difficulty,
			"required_meters":  def.RequiredMeters,
			"required_seconds": def.RequiredSeconds,
		}).
		Where(squirrel.Eq{"id": def.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build definition update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update mission definition: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
