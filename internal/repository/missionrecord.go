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
	"github.com/jmoiron/sqlx"
)

type missionRecord struct {
	ID                 uuid.UUID  `db:"id"`
	UserID             int64      `db:"user_id"`
	MissionID          uuid.UUID  `db:"mission_id"`
	Title              string     `db:"title"`
	Description        string     `db:"description"`
	Category           string     `db:"category"`
	Difficulty         string     `db:"difficulty"`
	Subtype            string     `db:"subtype"`
	Status             string     `db:"status"`
	RequiredMeters     *int       `db:"required_meters"`
	ProgressMeters     *int       `db:"progress_meters"`
	RequiredSeconds    *int       `db:"required_seconds"`
	ProgressSeconds    *int       `db:"progress_seconds"`
	AssignedDate       time.Time  `db:"assigned_date"`
	CompletedAt        *time.Time `db:"completed_at"`
	FeedbackComment    *string    `db:"feedback_comment"`
	FeedbackDifficulty *string    `db:"feedback_difficulty"`
	FeedbackImageURL   *string    `db:"feedback_image_url"`
}

var missionRecordColumns = []string{
	"id", "user_id", "mission_id", "title", "description", "category",
	"difficulty", "subtype", "status", "required_meters", "progress_meters",
	"required_seconds", "progress_seconds", "assigned_date", "completed_at",
	"feedback_comment", "feedback_difficulty", "feedback_image_url",
}

func (m *missionRecord) toModel() *model.MissionRecord {
	rec := &model.MissionRecord{
		ID:               m.ID,
		UserID:           m.UserID,
		MissionID:        m.MissionID,
		Title:            m.Title,
		Description:      m.Description,
		Category:         model.MissionCategory(m.Category),
		Difficulty:       model.MissionDifficulty(m.Difficulty),
		Subtype:          model.MissionSubtype(m.Subtype),
		Status:           model.MissionStatus(m.Status),
		RequiredMeters:   m.RequiredMeters,
		ProgressMeters:   m.ProgressMeters,
		RequiredSeconds:  m.RequiredSeconds,
		ProgressSeconds:  m.ProgressSeconds,
		AssignedDate:     m.AssignedDate,
		CompletedAt:      m.CompletedAt,
		FeedbackComment:  m.FeedbackComment,
		FeedbackImageURL: m.FeedbackImageURL,
	}
	if m.FeedbackDifficulty != nil {
		d := model.MissionDifficulty(*m.FeedbackDifficulty)
		rec.FeedbackDifficulty = &d
	}
	return rec
}

// GetRecordsByUserAndDate returns every record assigned to the user on the
// given calendar day, refilled batches included, in insertion order.
func (r *Repository) GetRecordsByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.MissionRecord, error) {
	query, args, err := squirrel.
		Select(missionRecordColumns...).
		From("mission_records").
		Where(squirrel.Eq{
			"user_id":       userID,
			"assigned_date": date.Format("2006-01-02"),
		}).
		OrderBy("seq").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build records query: %w", err)
	}

	var records []*missionRecord
	err = r.db.SelectContext(ctx, &records, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get mission records: %w", err)
	}

	result := make([]*model.MissionRecord, len(records))
	for i, rec := range records {
		result[i] = rec.toModel()
	}

	return result, nil
}

func (r *Repository) GetRecordByID(ctx context.Context, recordID uuid.UUID) (*model.MissionRecord, error) {
	var rec missionRecord
	query, args, err := squirrel.
		Select(missionRecordColumns...).
		From("mission_records").
		Where(squirrel.Eq{"id": recordID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &rec, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return rec.toModel(), nil
}

// CreateRecords persists one assignment batch atomically.
func (r *Repository) CreateRecords(ctx context.Context, records []*model.MissionRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		builder := squirrel.
			Insert("mission_records").
			Columns("id", "user_id", "mission_id", "title", "description",
				"category", "difficulty", "subtype", "status",
				"required_meters", "progress_meters",
				"required_seconds", "progress_seconds", "assigned_date")

		for _, rec := range records {
			builder = builder.Values(
				rec.ID, rec.UserID, rec.MissionID, rec.Title, rec.Description,
				rec.Category, rec.Difficulty, rec.Subtype, rec.Status,
				rec.RequiredMeters, rec.ProgressMeters,
				rec.RequiredSeconds, rec.ProgressSeconds,
				rec.AssignedDate.Format("2006-01-02"),
			)
		}

		query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build records insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert mission records: %w", err)
		}

		return nil
	})
}

// UpdateRecordLocked re-fetches the record under a row lock, applies mutate
// and writes the mutable columns back, all in one transaction. An error from
// mutate rolls back and propagates unchanged, so status-check-then-set is
// atomic with respect to concurrent calls on the same record.
func (r *Repository) UpdateRecordLocked(ctx context.Context, recordID uuid.UUID,
	mutate func(*model.MissionRecord) error) (*model.MissionRecord, error) {

	var updated *model.MissionRecord

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Select(missionRecordColumns...).
			From("mission_records").
			Where(squirrel.Eq{"id": recordID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var rec missionRecord
		err = tx.GetContext(ctx, &rec, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRecordNotFound
			}
			return err
		}

		m := rec.toModel()
		if err := mutate(m); err != nil {
			return err
		}

		updateQuery, updateArgs, err := squirrel.
			Update("mission_records").
			SetMap(map[string]interface{}{
				"status":              m.Status,
				"progress_meters":     m.ProgressMeters,
				"progress_seconds":    m.ProgressSeconds,
				"completed_at":        m.CompletedAt,
				"feedback_comment":    m.FeedbackComment,
				"feedback_difficulty": m.FeedbackDifficulty,
				"feedback_image_url":  m.FeedbackImageURL,
			}).
			Where(squirrel.Eq{"id": recordID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build record update query: %w", err)
		}

		_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to update mission record: %w", err)
		}

		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
