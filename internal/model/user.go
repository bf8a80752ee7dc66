package model

import "time"

type User struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Email       string    `gorm:"size:255;not null;uniqueIndex:uk_users_email"`
	DisplayName string    `gorm:"column:display_name;size:255;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{&User{}, &Tag{}, &Item{}, &ItemTag{}}
}
