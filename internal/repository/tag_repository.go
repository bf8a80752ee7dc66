package repository

import (
	"context"

	"github.com/shinyyama/readinglist-backend/internal/model"
	"gorm.io/gorm"
)

type TagFilter struct {
	UserID       *uint64
	NameContains string
}

type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	FindByID(ctx context.Context, id uint64) (*model.Tag, error)
	FindByUserAndName(ctx context.Context, userID uint64, name string) (*model.Tag, error)
	List(ctx context.Context, filter TagFilter) ([]model.Tag, error)
	// FindOwned returns the subset of ids that exist and belong to userID.
	FindOwned(ctx context.Context, userID uint64, ids []uint64) ([]model.Tag, error)
	Delete(ctx context.Context, id uint64) error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *model.Tag) error {
	if r.db == nil {
		return translate(ErrDBNotReady, "")
	}
	return translate(r.db.WithContext(ctx).Create(tag).Error, "")
}

func (r *tagRepository) FindByID(ctx context.Context, id uint64) (*model.Tag, error) {
	if r.db == nil {
		return nil, translate(ErrDBNotReady, "")
	}
	var tag model.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, translate(err, "tag not found")
	}
	return &tag, nil
}

// FindByUserAndName returns nil, nil when no such tag exists.
func (r *tagRepository) FindByUserAndName(ctx context.Context, userID uint64, name string) (*model.Tag, error) {
	if r.db == nil {
		return nil, translate(ErrDBNotReady, "")
	}
	var tags []model.Tag
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Limit(1).
		Find(&tags).Error; err != nil {
		return nil, translate(err, "")
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return &tags[0], nil
}

func (r *tagRepository) List(ctx context.Context, filter TagFilter) ([]model.Tag, error) {
	if r.db == nil {
		return nil, translate(ErrDBNotReady, "")
	}
	q := r.db.WithContext(ctx).Model(&model.Tag{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.NameContains != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?) ESCAPE '!'", containsPattern(filter.NameContains))
	}
	tags := []model.Tag{}
	if err := q.Order("name ASC, id ASC").Find(&tags).Error; err != nil {
		return nil, translate(err, "")
	}
	return tags, nil
}

func (r *tagRepository) FindOwned(ctx context.Context, userID uint64, ids []uint64) ([]model.Tag, error) {
	if r.db == nil {
		return nil, translate(ErrDBNotReady, "")
	}
	tags := []model.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("id ASC").
		Find(&tags).Error; err != nil {
		return nil, translate(err, "")
	}
	return tags, nil
}

// Delete removes the tag and its associations. Items are kept.
func (r *tagRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return translate(ErrDBNotReady, "")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&model.ItemTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "tag not found")
}
