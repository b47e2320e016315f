package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wellquest/internal/model"

	"github.com/Masterminds/squirrel"
)

type User struct {
	ID               int64     `db:"id"`
	Username         string    `db:"username"`
	IsAdmin          bool      `db:"is_admin"`
	RegistrationDate time.Time `db:"registration_date"`
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	query, args, err := squirrel.
		Insert("users").
		Columns("username", "registration_date").
		Values(user.Username, user.RegistrationDate).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build user insert query: %w", err)
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	return id, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("id", "username", "is_admin", "registration_date").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.User{
		ID:               user.ID,
		Username:         user.Username,
		IsAdmin:          user.IsAdmin,
		RegistrationDate: user.RegistrationDate,
	}, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("id", "username", "is_admin", "registration_date").
		From("users").
		Where(squirrel.Eq{"username": username}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.User{
		ID:               user.ID,
		Username:         user.Username,
		IsAdmin:          user.IsAdmin,
		RegistrationDate: user.RegistrationDate,
	}, nil
}
