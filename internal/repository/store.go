package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TDXM1001/zugou-rental/internal/service"
)

// Store is the gorm-backed implementation of the service storage port.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Contracts() service.ContractStore {
	return &ContractRepository{db: s.db}
}

func (s *Store) Properties() service.PropertyStore {
	return &PropertyRepository{db: s.db}
}

func (s *Store) Users() service.UserStore {
	return &UserRepository{db: s.db}
}

func (s *Store) Transaction(ctx context.Context, fn func(service.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
