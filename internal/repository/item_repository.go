package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shinyyama/readinglist-backend/internal/model"
	"gorm.io/gorm"
)

type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByPriority  SortField = "priority"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ItemFilter holds the already-validated list predicates. Nil or empty fields do not filter.
type ItemFilter struct {
	UserID        *uint64
	Status        *model.Status
	Kind          *model.Kind
	Priority      *model.Priority
	TagIDs        []uint64 // any of
	TitleContains string
	CreatedAfter  *time.Time // inclusive
	CreatedBefore *time.Time // inclusive
}

type ItemListParams struct {
	Filter ItemFilter
	SortBy SortField
	Order  SortOrder
	Limit  int
	Offset int
}

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id uint64) (*model.Item, error)
	List(ctx context.Context, params ItemListParams) ([]model.Item, int64, error)
	Update(ctx context.Context, id uint64, fields map[string]any) error
	Touch(ctx context.Context, id uint64, at time.Time) error
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int64, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	if r.db == nil {
		return translate(ErrDBNotReady, "")
	}
	return translate(r.db.WithContext(ctx).Create(item).Error, "")
}

func (r *itemRepository) FindByID(ctx context.Context, id uint64) (*model.Item, error) {
	if r.db == nil {
		return nil, translate(ErrDBNotReady, "")
	}
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err, "item not found")
	}
	items := []model.Item{item}
	if err := loadTags(ctx, r.db, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *itemRepository) List(ctx context.Context, params ItemListParams) ([]model.Item, int64, error) {
	if r.db == nil {
		return nil, 0, translate(ErrDBNotReady, "")
	}
	var (
		items []model.Item
		total int64
	)
	if err := r.filtered(ctx, params.Filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "")
	}
	if err := r.filtered(ctx, params.Filter).
		Order(orderClause(params.SortBy, params.Order)).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&items).Error; err != nil {
		return nil, 0, translate(err, "")
	}
	if err := loadTags(ctx, r.db, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// filtered builds a fresh statement per call; gorm statements are not reusable
// between Count and Find.
func (r *itemRepository) filtered(ctx context.Context, f ItemFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Item{})
	if f.UserID != nil {
		q = q.Where("items.user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("items.status = ?", *f.Status)
	}
	if f.Kind != nil {
		q = q.Where("items.kind = ?", *f.Kind)
	}
	if f.Priority != nil {
		q = q.Where("items.priority = ?", *f.Priority)
	}
	if len(f.TagIDs) > 0 {
		// Semi-join: an item matching several tags is still one row.
		sub := r.db.WithContext(ctx).Model(&model.ItemTag{}).Select("item_id").Where("tag_id IN ?", f.TagIDs)
		q = q.Where("items.id IN (?)", sub)
	}
	if f.TitleContains != "" {
		q = q.Where("LOWER(items.title) LIKE LOWER(?) ESCAPE '!'", containsPattern(f.TitleContains))
	}
	if f.CreatedAfter != nil {
		q = q.Where("items.created_at >= ?", f.CreatedAfter.UTC())
	}
	if f.CreatedBefore != nil {
		q = q.Where("items.created_at <= ?", f.CreatedBefore.UTC())
	}
	return q
}

// priorityRankExpr orders priorities by meaning rather than by string.
var priorityRankExpr = func() string {
	var b strings.Builder
	b.WriteString("CASE items.priority")
	for _, p := range model.Priorities() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, p.Rank())
	}
	b.WriteString(" ELSE -1 END")
	return b.String()
}()

// orderClause expects sortBy and order to be validated. Ties break on ascending id.
func orderClause(sortBy SortField, order SortOrder) string {
	dir := "DESC"
	if order == SortAsc {
		dir = "ASC"
	}
	var key string
	switch sortBy {
	case SortByPriority:
		key = priorityRankExpr
	case SortByUpdatedAt:
		key = "items.updated_at"
	default:
		key = "items.created_at"
	}
	return key + " " + dir + ", items.id ASC"
}

func (r *itemRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	if r.db == nil {
		return translate(ErrDBNotReady, "")
	}
	err := r.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", id).Updates(fields).Error
	return translate(err, "item not found")
}

func (r *itemRepository) Touch(ctx context.Context, id uint64, at time.Time) error {
	return r.Update(ctx, id, map[string]any{"updated_at": at})
}

// Delete removes the item and its tag associations atomically.
func (r *itemRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return translate(ErrDBNotReady, "")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&model.ItemTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Item{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "item not found")
}

func (r *itemRepository) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, translate(ErrDBNotReady, "")
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).Count(&n).Error
	return n, translate(err, "")
}

// loadTags fills Tags on every item, ordered by tag name.
func loadTags(ctx context.Context, db *gorm.DB, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uint64, len(items))
	for i := range items {
		ids[i] = items[i].ID
		items[i].Tags = []model.Tag{}
	}
	var links []model.ItemTag
	if err := db.WithContext(ctx).Where("item_id IN ?", ids).Find(&links).Error; err != nil {
		return translate(err, "")
	}
	if len(links) == 0 {
		return nil
	}
	tagIDs := make([]uint64, 0, len(links))
	for _, l := range links {
		tagIDs = append(tagIDs, l.TagID)
	}
	var tags []model.Tag
	if err := db.WithContext(ctx).Where("id IN ?", model.NewTagIDSet(tagIDs...).Slice()).
		Order("name ASC, id ASC").Find(&tags).Error; err != nil {
		return translate(err, "")
	}
	byItem := make(map[uint64]model.TagIDSet, len(items))
	for _, l := range links {
		if byItem[l.ItemID] == nil {
			byItem[l.ItemID] = model.NewTagIDSet()
		}
		byItem[l.ItemID][l.TagID] = struct{}{}
	}
	for i := range items {
		set := byItem[items[i].ID]
		for _, t := range tags {
			if set.Contains(t.ID) {
				items[i].Tags = append(items[i].Tags, t)
			}
		}
	}
	return nil
}

// containsPattern escapes LIKE wildcards using '!' as the escape character.
// Case folding happens in SQL on both sides of the comparison.
func containsPattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(s) + "%"
}
