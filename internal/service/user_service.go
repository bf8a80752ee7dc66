package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
	"github.com/shinyyama/readinglist-backend/internal/model"
	"github.com/shinyyama/readinglist-backend/internal/repository"
	"github.com/shinyyama/readinglist-backend/internal/reqctx"
	"github.com/shinyyama/readinglist-backend/internal/validation"
)

type CreateUserInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	DisplayName string `json:"display_name" validate:"required,max=255"`
}

type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*model.User, error)
	Get(ctx context.Context, id uint64) (*model.User, error)
	Delete(ctx context.Context, id uint64) error
}

type userService struct {
	store     repository.Transactor
	validator *validation.Validator
	now       Clock
	log       *zap.Logger
}

func NewUserService(store repository.Transactor, now Clock, log *zap.Logger) UserService {
	if now == nil {
		now = SystemClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{store: store, validator: validation.New(), now: now, log: log}
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	user := &model.User{Email: in.Email, DisplayName: in.DisplayName, CreatedAt: s.now()}
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		taken, err := tx.Users().ExistsByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if taken {
			return domainerrors.Conflict("email already registered")
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	reqctx.Logger(ctx, s.log).Info("user created", zap.Uint64("user_id", user.ID))
	return user, nil
}

func (s *userService) Get(ctx context.Context, id uint64) (*model.User, error) {
	return s.store.Users().FindByID(ctx, id)
}

// Delete removes the user with all owned items, tags and their associations.
func (s *userService) Delete(ctx context.Context, id uint64) error {
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return err
	}
	reqctx.Logger(ctx, s.log).Info("user deleted", zap.Uint64("user_id", id))
	return nil
}
