package model

import (
	"slices"
	"strings"
	"time"

	domainerrors "github.com/shinyyama/readinglist-backend/internal/errors"
)

type Kind string

const (
	KindBook    Kind = "book"
	KindArticle Kind = "article"
)

type Status string

const (
	StatusPlanned Status = "planned"
	StatusReading Status = "reading"
	StatusDone    Status = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

var (
	kinds    = []Kind{KindBook, KindArticle}
	statuses = []Status{StatusPlanned, StatusReading, StatusDone}
	// priorities is ordered by rank; index == Rank().
	priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh}
)

func (k Kind) Valid() bool     { return slices.Contains(kinds, k) }
func (s Status) Valid() bool   { return slices.Contains(statuses, s) }
func (p Priority) Valid() bool { return slices.Contains(priorities, p) }

// Rank maps a priority to its ordinal (low=0, normal=1, high=2). Unknown values rank -1.
func (p Priority) Rank() int {
	return slices.Index(priorities, p)
}

// Priorities returns all priorities in ascending rank order.
func Priorities() []Priority {
	return slices.Clone(priorities)
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if !k.Valid() {
		return "", domainerrors.Validationf("invalid kind %q: must be one of book, article", s)
	}
	return k, nil
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return "", domainerrors.Validationf("invalid status %q: must be one of planned, reading, done", s)
	}
	return st, nil
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.TrimSpace(s))
	if !p.Valid() {
		return "", domainerrors.Validationf("invalid priority %q: must be one of low, normal, high", s)
	}
	return p, nil
}

// Item is a book or article on a user's reading list.
// Tags is not a column; repositories load it from item_tags.
type Item struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"column:user_id;not null;index:idx_items_user_id"`
	Title     string    `gorm:"size:500;not null"`
	Kind      Kind      `gorm:"size:16;not null;index:idx_items_kind"`
	Status    Status    `gorm:"size:16;not null;index:idx_items_status"`
	Priority  Priority  `gorm:"size:16;not null;index:idx_items_priority"`
	Notes     *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_items_created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
	Tags      []Tag     `gorm:"-"`
}

func (Item) TableName() string {
	return "items"
}

// TagIDs returns the set of tag ids currently attached to the item.
func (i *Item) TagIDs() TagIDSet {
	ids := make([]uint64, 0, len(i.Tags))
	for _, t := range i.Tags {
		ids = append(ids, t.ID)
	}
	return NewTagIDSet(ids...)
}
