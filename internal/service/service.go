package service

import (
	"context"
	"errors"
	"time"

	"wellquest/internal/model"
	"wellquest/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrMissionNotFound      = errors.New("mission record not found")
	ErrMissionForbidden     = errors.New("mission record belongs to another user")
	ErrInvalidMissionStatus = errors.New("operation not allowed in current mission status")
	ErrImageRequired        = errors.New("image is required for photo mission feedback")
	ErrNoMissionsAvailable  = errors.New("no missions available")
)

type Service struct {
	*UserService
	*AssignmentService
	*MissionRecordService
	*CatalogService
}

func NewService(us *UserService, as *AssignmentService, ms *MissionRecordService, cs *CatalogService) *Service {
	return &Service{
		UserService:          us,
		AssignmentService:    as,
		MissionRecordService: ms,
		CatalogService:       cs,
	}
}

type UserServiceI interface {
	RegisterUser(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type AssignmentServiceI interface {
	GetTodaysMissions(ctx context.Context, userID int64) ([]*model.MissionRecord, error)
	Refill(ctx context.Context, userID int64) ([]*model.MissionRecord, error)
}

type MissionRecordServiceI interface {
	GetByID(ctx context.Context, recordID uuid.UUID, callerID int64) (*model.MissionRecord, error)
	Start(ctx context.Context, recordID uuid.UUID, callerID int64) (*model.MissionRecord, error)
	Pause(ctx context.Context, recordID uuid.UUID, callerID int64) (*model.MissionRecord, error)
	Complete(ctx context.Context, recordID uuid.UUID, callerID int64) (*model.MissionRecord, error)
	UpdateDistanceProgress(ctx context.Context, recordID uuid.UUID, callerID int64, meters int) (*model.MissionRecord, error)
	UpdateTimerProgress(ctx context.Context, recordID uuid.UUID, callerID int64, seconds int) (*model.MissionRecord, error)
	AddFeedback(ctx context.Context, in FeedbackInput) (*model.MissionRecord, error)
	UpdateFeedback(ctx context.Context, in FeedbackInput) (*model.MissionRecord, error)
}

type CatalogServiceI interface {
	CreateDefinition(ctx context.Context, def *model.MissionDefinition) (*model.MissionDefinition, error)
	UpdateDefinition(ctx context.Context, def *model.MissionDefinition) (*model.MissionDefinition, error)
	GetDefinitionByID(ctx context.Context, id uuid.UUID) (*model.MissionDefinition, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type CatalogRepository interface {
	GetDefinitionsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.MissionDefinition, error)
	GetDefinitionByID(ctx context.Context, id uuid.UUID) (*model.MissionDefinition, error)
	CreateDefinition(ctx context.Context, def *model.MissionDefinition) error
	UpdateDefinition(ctx context.Context, def *model.MissionDefinition) error
}

type MissionRecordRepository interface {
	GetRecordsByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.MissionRecord, error)
	GetRecordByID(ctx context.Context, recordID uuid.UUID) (*model.MissionRecord, error)
	CreateRecords(ctx context.Context, records []*model.MissionRecord) error
	UpdateRecordLocked(ctx context.Context, recordID uuid.UUID, mutate func(*model.MissionRecord) error) (*model.MissionRecord, error)
}

type Recommender interface {
	Recommend(ctx context.Context, contextText string, count int, excluded []uuid.UUID) ([]uuid.UUID, error)
}

func translateRecordErr(err error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return ErrMissionNotFound
	}
	return err
}
