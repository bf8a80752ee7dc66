package repository

import (
	"context"

	"github.com/shinyyama/readinglist-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	ExistsByID(ctx context.Context, id uint64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if r.db == nil {
		return translate(ErrDBNotReady, "")
	}
	return translate(r.db.WithContext(ctx).Create(user).Error, "")
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	if r.db == nil {
		return nil, translate(ErrDBNotReady, "")
	}
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user not found")
	}
	return &user, nil
}

func (r *userRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	if r.db == nil {
		return false, translate(ErrDBNotReady, "")
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, translate(err, "")
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.db == nil {
		return false, translate(ErrDBNotReady, "")
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, translate(err, "")
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, translate(ErrDBNotReady, "")
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, translate(err, "")
}

// Delete removes the user together with every owned item, tag and association.
func (r *userRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return translate(ErrDBNotReady, "")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownedItems := tx.Model(&model.Item{}).Select("id").Where("user_id = ?", id)
		ownedTags := tx.Model(&model.Tag{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("item_id IN (?) OR tag_id IN (?)", ownedItems, ownedTags).
			Delete(&model.ItemTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Tag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "user not found")
}
