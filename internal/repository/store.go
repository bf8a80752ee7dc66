package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the entity repositories bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Items() ItemRepository
	Tags() TagRepository
	ItemTags() ItemTagRepository
}

// Transactor runs fn against repositories bound to a single transaction.
// Either every write made through tx commits or none does.
type Transactor interface {
	Repositories
	Transaction(ctx context.Context, fn func(tx Repositories) error) error
	Ping(ctx context.Context) error
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() UserRepository       { return NewUserRepository(s.db) }
func (s *Store) Items() ItemRepository       { return NewItemRepository(s.db) }
func (s *Store) Tags() TagRepository         { return NewTagRepository(s.db) }
func (s *Store) ItemTags() ItemTagRepository { return NewItemTagRepository(s.db) }

func (s *Store) Transaction(ctx context.Context, fn func(tx Repositories) error) error {
	if s.db == nil {
		return translate(ErrDBNotReady, "")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	return translate(err, "")
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return translate(ErrDBNotReady, "")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return translate(err, "")
	}
	return translate(sqlDB.PingContext(ctx), "")
}
