package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
	"github.com/shinyyama/readinglist-backend/internal/model"
	"github.com/shinyyama/readinglist-backend/internal/repository"
	"github.com/shinyyama/readinglist-backend/internal/reqctx"
)

const maxTagNameLength = 100

type ListTagsQuery struct {
	UserID       *uint64
	NameContains string
}

type TagService interface {
	Create(ctx context.Context, userID uint64, name string) (*model.Tag, error)
	Get(ctx context.Context, id uint64) (*model.Tag, error)
	List(ctx context.Context, q ListTagsQuery) ([]model.Tag, error)
	Delete(ctx context.Context, id uint64) error
}

type tagService struct {
	store repository.Transactor
	log   *zap.Logger
}

func NewTagService(store repository.Transactor, log *zap.Logger) TagService {
	if log == nil {
		log = zap.NewNop()
	}
	return &tagService{store: store, log: log}
}

func (s *tagService) Create(ctx context.Context, userID uint64, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"name": "is required"})
	}
	if len([]rune(name)) > maxTagNameLength {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"name": "must not exceed 100 characters"})
	}

	tag := &model.Tag{UserID: userID, Name: name}
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		ok, err := tx.Users().ExistsByID(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return domainerrors.NotFound("user not found")
		}
		existing, err := tx.Tags().FindByUserAndName(ctx, userID, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainerrors.Conflict("tag already exists for user")
		}
		// The unique index still guards against a concurrent insert.
		return tx.Tags().Create(ctx, tag)
	})
	if err != nil {
		return nil, err
	}

	reqctx.Logger(ctx, s.log).Info("tag created", zap.Uint64("tag_id", tag.ID), zap.Uint64("user_id", userID))
	return tag, nil
}

func (s *tagService) Get(ctx context.Context, id uint64) (*model.Tag, error) {
	return s.store.Tags().FindByID(ctx, id)
}

func (s *tagService) List(ctx context.Context, q ListTagsQuery) ([]model.Tag, error) {
	return s.store.Tags().List(ctx, repository.TagFilter{
		UserID:       q.UserID,
		NameContains: q.NameContains,
	})
}

func (s *tagService) Delete(ctx context.Context, id uint64) error {
	if err := s.store.Tags().Delete(ctx, id); err != nil {
		return err
	}
	reqctx.Logger(ctx, s.log).Info("tag deleted", zap.Uint64("tag_id", id))
	return nil
}
