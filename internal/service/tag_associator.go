package service

import (
	"context"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
	"github.com/shinyyama/readinglist-backend/internal/model"
	"github.com/shinyyama/readinglist-backend/internal/repository"
)

// TagAssociator maintains item–tag links. Callers pass repositories bound to
// the transaction the change belongs to, and an item whose Tags are loaded.
type TagAssociator struct {
	now         Clock
	touchOnNoop bool
}

// NewTagAssociator returns an associator stamping updated_at with now. When
// touchOnNoop is false, a call that leaves the tag set as it was does not
// advance updated_at.
func NewTagAssociator(now Clock, touchOnNoop bool) *TagAssociator {
	if now == nil {
		now = SystemClock
	}
	return &TagAssociator{now: now, touchOnNoop: touchOnNoop}
}

// Attach unions tagIDs into the item's tags. Every id must name a tag owned by
// the item's user, otherwise nothing is written.
func (a *TagAssociator) Attach(ctx context.Context, tx repository.Repositories, item *model.Item, tagIDs []uint64) error {
	added, err := a.link(ctx, tx, item, tagIDs)
	if err != nil {
		return err
	}
	return a.touch(ctx, tx, item, added > 0)
}

// Detach removes tagIDs from the item's tags. Ids that are not attached are ignored.
func (a *TagAssociator) Detach(ctx context.Context, tx repository.Repositories, item *model.Item, tagIDs []uint64) error {
	current := item.TagIDs()
	remove := model.NewTagIDSet(tagIDs...).Intersect(current)
	if remove.Len() > 0 {
		if err := tx.ItemTags().Detach(ctx, item.ID, remove.Slice()); err != nil {
			return err
		}
	}
	return a.touch(ctx, tx, item, remove.Len() > 0)
}

// link validates ownership and inserts the missing links without touching the item.
func (a *TagAssociator) link(ctx context.Context, tx repository.Repositories, item *model.Item, tagIDs []uint64) (int, error) {
	requested := model.NewTagIDSet(tagIDs...)
	if requested.Len() == 0 {
		return 0, nil
	}
	owned, err := tx.Tags().FindOwned(ctx, item.UserID, requested.Slice())
	if err != nil {
		return 0, err
	}
	if len(owned) != requested.Len() {
		found := model.NewTagIDSet()
		for _, t := range owned {
			found[t.ID] = struct{}{}
		}
		return 0, domainerrors.ValidationWithDetails("tag not found or not owned by user", map[string]any{
			"tag_ids": requested.Difference(found).Slice(),
		})
	}

	add := requested.Difference(item.TagIDs())
	if add.Len() == 0 {
		return 0, nil
	}
	if err := tx.ItemTags().Attach(ctx, item.ID, add.Slice()); err != nil {
		return 0, err
	}
	return add.Len(), nil
}

func (a *TagAssociator) touch(ctx context.Context, tx repository.Repositories, item *model.Item, changed bool) error {
	if !changed && !a.touchOnNoop {
		return nil
	}
	at := nextStamp(a.now, item.UpdatedAt)
	if err := tx.Items().Touch(ctx, item.ID, at); err != nil {
		return err
	}
	item.UpdatedAt = at
	return nil
}
