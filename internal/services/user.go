package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/apperr"
	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/requestdata"
	"github.com/hybridlms/backend/internal/types"
)

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: not authenticated", apperr.ErrInvalidState)
	}
	return us.GetByID(ctx, rd.UserID)
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}
	return users[0], nil
}
