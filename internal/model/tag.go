package model

import "time"

// Tag is a user-scoped label. Names are unique per user.
type Tag struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:uk_tags_user_name,priority:1"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:uk_tags_user_name,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Tag) TableName() string {
	return "tags"
}
