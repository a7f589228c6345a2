package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uint) (*model.Property, error) {
	var property model.Property
	if err := r.db.WithContext(ctx).First(&property, id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

// GetForUpdate takes a row lock on the property so concurrent bookings of
// the same property serialize on it. SQLite has no row locks; its
// single-writer transactions give the same guarantee.
func (r *PropertyRepository) GetForUpdate(ctx context.Context, id uint) (*model.Property, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	var property model.Property
	if err := query.First(&property, id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepository) SetStatus(ctx context.Context, id uint, status model.PropertyStatus) error {
	return r.db.WithContext(ctx).Model(&model.Property{}).
		Where("id = ?", id).
		Update("status", status).Error
}
