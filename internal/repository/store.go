package repository

import (
	"context"

	"gorm.io/gorm"
)

// GormStore is a GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a Store bound to db. Passing a transaction handle yields a
// transactional Store.
func NewStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository          { return NewUserRepository(s.db) }
func (s *GormStore) Boards() BoardRepository        { return NewBoardRepository(s.db) }
func (s *GormStore) Categories() CategoryRepository { return NewCategoryRepository(s.db) }
func (s *GormStore) Goals() GoalRepository          { return NewGoalRepository(s.db) }
func (s *GormStore) Comments() CommentRepository    { return NewCommentRepository(s.db) }
func (s *GormStore) BotUsers() BotUserRepository    { return NewBotUserRepository(s.db) }

// Atomic runs fn inside a database transaction.
func (s *GormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
