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

type CreateItemInput struct {
	UserID   uint64   `json:"user_id" validate:"required"`
	Title    string   `json:"title" validate:"required,max=500"`
	Kind     string   `json:"kind" validate:"required,kind"`
	Status   string   `json:"status" validate:"omitempty,status"`
	Priority string   `json:"priority" validate:"omitempty,priority"`
	Notes    *string  `json:"notes"`
	TagIDs   []uint64 `json:"tag_ids"`
}

// ItemPage is one page of a list query together with the resolved bounds.
type ItemPage struct {
	Items  []model.Item
	Total  int64
	Limit  int
	Offset int
}

type ItemService interface {
	Create(ctx context.Context, in CreateItemInput) (*model.Item, error)
	Get(ctx context.Context, id uint64) (*model.Item, error)
	List(ctx context.Context, q ListItemsQuery) (*ItemPage, error)
	Update(ctx context.Context, id uint64, patch model.ItemPatch) (*model.Item, error)
	Delete(ctx context.Context, id uint64) error
	AttachTags(ctx context.Context, id uint64, tagIDs []uint64) (*model.Item, error)
	DetachTags(ctx context.Context, id uint64, tagIDs []uint64) (*model.Item, error)
}

type itemService struct {
	store     repository.Transactor
	tags      *TagAssociator
	validator *validation.Validator
	now       Clock
	log       *zap.Logger
}

func NewItemService(store repository.Transactor, tags *TagAssociator, now Clock, log *zap.Logger) ItemService {
	if now == nil {
		now = SystemClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &itemService{
		store:     store,
		tags:      tags,
		validator: validation.New(),
		now:       now,
		log:       log,
	}
}

func (s *itemService) Create(ctx context.Context, in CreateItemInput) (*model.Item, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Kind = strings.TrimSpace(in.Kind)
	in.Status = strings.TrimSpace(in.Status)
	in.Priority = strings.TrimSpace(in.Priority)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	item := &model.Item{
		UserID:   in.UserID,
		Title:    in.Title,
		Kind:     model.Kind(in.Kind),
		Status:   model.StatusPlanned,
		Priority: model.PriorityNormal,
		Notes:    in.Notes,
		Tags:     []model.Tag{},
	}
	if in.Status != "" {
		item.Status = model.Status(in.Status)
	}
	if in.Priority != "" {
		item.Priority = model.Priority(in.Priority)
	}
	item.CreatedAt = s.now()
	item.UpdatedAt = item.CreatedAt

	var created *model.Item
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		ok, err := tx.Users().ExistsByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return domainerrors.NotFound("user not found")
		}
		if err := tx.Items().Create(ctx, item); err != nil {
			return err
		}
		if _, err := s.tags.link(ctx, tx, item, in.TagIDs); err != nil {
			return err
		}
		created, err = tx.Items().FindByID(ctx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	reqctx.Logger(ctx, s.log).Info("item created",
		zap.Uint64("item_id", created.ID),
		zap.Uint64("user_id", created.UserID),
		zap.Int("tags", len(created.Tags)),
	)
	return created, nil
}

func (s *itemService) Get(ctx context.Context, id uint64) (*model.Item, error) {
	return s.store.Items().FindByID(ctx, id)
}

func (s *itemService) List(ctx context.Context, q ListItemsQuery) (*ItemPage, error) {
	params, err := q.Params()
	if err != nil {
		return nil, err
	}
	items, total, err := s.store.Items().List(ctx, params)
	if err != nil {
		return nil, err
	}
	return &ItemPage{Items: items, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}

func (s *itemService) Update(ctx context.Context, id uint64, patch model.ItemPatch) (*model.Item, error) {
	fields, err := patchFields(patch)
	if err != nil {
		return nil, err
	}

	var updated *model.Item
	err = s.store.Transaction(ctx, func(tx repository.Repositories) error {
		current, err := tx.Items().FindByID(ctx, id)
		if err != nil {
			return err
		}
		fields["updated_at"] = nextStamp(s.now, current.UpdatedAt)
		if err := tx.Items().Update(ctx, id, fields); err != nil {
			return err
		}
		updated, err = tx.Items().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// patchFields converts the set fields of patch into column updates.
func patchFields(patch model.ItemPatch) (map[string]any, error) {
	fields := map[string]any{}
	problems := map[string]string{}

	if v, ok := patch.Title.Get(); ok {
		title := strings.TrimSpace(v)
		switch {
		case title == "":
			problems["title"] = "is required"
		case len([]rune(title)) > 500:
			problems["title"] = "must not exceed 500 characters"
		default:
			fields["title"] = title
		}
	}
	if v, ok := patch.Kind.Get(); ok {
		if !v.Valid() {
			problems["kind"] = "must be one of: book article"
		} else {
			fields["kind"] = string(v)
		}
	}
	if v, ok := patch.Status.Get(); ok {
		if !v.Valid() {
			problems["status"] = "must be one of: planned reading done"
		} else {
			fields["status"] = string(v)
		}
	}
	if v, ok := patch.Priority.Get(); ok {
		if !v.Valid() {
			problems["priority"] = "must be one of: low normal high"
		} else {
			fields["priority"] = string(v)
		}
	}
	if v, ok := patch.Notes.Get(); ok {
		if v == nil {
			fields["notes"] = nil
		} else {
			fields["notes"] = *v
		}
	}

	if len(problems) > 0 {
		return nil, domainerrors.ValidationWithDetails("validation failed", problems)
	}
	return fields, nil
}

func (s *itemService) Delete(ctx context.Context, id uint64) error {
	if err := s.store.Items().Delete(ctx, id); err != nil {
		return err
	}
	reqctx.Logger(ctx, s.log).Info("item deleted", zap.Uint64("item_id", id))
	return nil
}

func (s *itemService) AttachTags(ctx context.Context, id uint64, tagIDs []uint64) (*model.Item, error) {
	return s.mutateTags(ctx, id, func(tx repository.Repositories, item *model.Item) error {
		return s.tags.Attach(ctx, tx, item, tagIDs)
	})
}

func (s *itemService) DetachTags(ctx context.Context, id uint64, tagIDs []uint64) (*model.Item, error) {
	return s.mutateTags(ctx, id, func(tx repository.Repositories, item *model.Item) error {
		return s.tags.Detach(ctx, tx, item, tagIDs)
	})
}

func (s *itemService) mutateTags(ctx context.Context, id uint64, fn func(tx repository.Repositories, item *model.Item) error) (*model.Item, error) {
	var result *model.Item
	err := s.store.Transaction(ctx, func(tx repository.Repositories) error {
		item, err := tx.Items().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, item); err != nil {
			return err
		}
		result, err = tx.Items().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
