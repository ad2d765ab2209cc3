package repository

import (
	"context"

	"gorm.io/gorm"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository { return &userRepo{db: s.db} }
func (s *GormStore) Catalog() CatalogRepository { return &catalogRepo{db: s.db} }
func (s *GormStore) Enrollments() EnrollmentRepository { return &enrollmentRepo{db: s.db} }
func (s *GormStore) Progress() ProgressRepository { return &progressRepo{db: s.db} }
func (s *GormStore) Grants() GrantRepository { return &grantRepo{db: s.db} }

// Transaction nests as a savepoint when s is already transactional.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
