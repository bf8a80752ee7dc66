package repository

import (
	"context"

	"github.com/shinyyama/readinglist-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemTagRepository interface {
	// Attach links tagIDs to itemID. Existing links are left as they are.
	Attach(ctx context.Context, itemID uint64, tagIDs []uint64) error
	// Detach removes links for tagIDs. Missing links are ignored.
	Detach(ctx context.Context, itemID uint64, tagIDs []uint64) error
}

type itemTagRepository struct {
	db *gorm.DB
}

func NewItemTagRepository(db *gorm.DB) ItemTagRepository {
	return &itemTagRepository{db: db}
}

func (r *itemTagRepository) Attach(ctx context.Context, itemID uint64, tagIDs []uint64) error {
	if r.db == nil {
		return translate(ErrDBNotReady, "")
	}
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]model.ItemTag, 0, len(tagIDs))
	for _, id := range model.NewTagIDSet(tagIDs...).Slice() {
		links = append(links, model.ItemTag{ItemID: itemID, TagID: id})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
	return translate(err, "")
}

func (r *itemTagRepository) Detach(ctx context.Context, itemID uint64, tagIDs []uint64) error {
	if r.db == nil {
		return translate(ErrDBNotReady, "")
	}
	if len(tagIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND tag_id IN ?", itemID, tagIDs).
		Delete(&model.ItemTag{}).Error
	return translate(err, "")
}
