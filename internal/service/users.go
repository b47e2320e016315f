package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellquest/internal/model"
	"wellquest/internal/repository"
)

type UserService struct {
	repo UserRepository
	now  func() time.Time
}

func NewUserService(repo UserRepository, opts ...UserOption) *UserService {
	s := &UserService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type UserOption func(*UserService)

func WithUserClock(now func() time.Time) UserOption {
	return func(s *UserService) { s.now = now }
}

func (s *UserService) RegisterUser(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	user := &model.User{
		Username:         username,
		RegistrationDate: s.now().UTC(),
	}

	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.ID = id

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
