package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/repos"
	"github.com/indecor/dreamspace-backend/internal/types"
)

type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{db: db, log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return users[0], nil
}

func (us *userService) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*types.User, error) {
	updates := map[string]interface{}{}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if len(updates) > 0 {
		if err := us.userRepo.UpdateFields(ctx, nil, userID, updates); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}
	return us.GetMe(ctx, userID)
}
