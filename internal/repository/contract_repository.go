package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/TDXM1001/zugou-rental/internal/model"
	"github.com/TDXM1001/zugou-rental/internal/service"
)

// blockingStatuses are the contract statuses that reserve a property's
// time window.
var blockingStatuses = []model.ContractStatus{
	model.ContractStatusActive,
	model.ContractStatusPending,
}

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) Save(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *ContractRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Contract{}, id).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uint) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).First(&contract, id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindOverlapping applies the half-open interval test: [e1,x1) and [e2,x2)
// overlap iff e1 < x2 and e2 < x1.
func (r *ContractRepository) FindOverlapping(ctx context.Context, propertyID uint, effective, expiry time.Time, excludeID uint) (*model.Contract, error) {
	query := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status IN ?", blockingStatuses).
		Where("effective_date < ? AND ? < expiry_date", expiry, effective)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var conflict model.Contract
	err := query.Order("effective_date ASC").First(&conflict).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conflict, nil
}

func (r *ContractRepository) List(ctx context.Context, filter service.ContractFilter) ([]model.Contract, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Contract{})
	query = applyPartyScope(query, filter.PartyID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PropertyID != 0 {
		query = query.Where("property_id = ?", filter.PropertyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC, id DESC")
	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var contracts []model.Contract
	if err := query.Find(&contracts).Error; err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (r *ContractRepository) ExpiringBefore(ctx context.Context, cutoff time.Time, partyID uint) ([]model.Contract, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", model.ContractStatusActive).
		Where("expiry_date > ? AND expiry_date <= ?", time.Now(), cutoff)
	query = applyPartyScope(query, partyID)

	var contracts []model.Contract
	if err := query.Order("expiry_date ASC").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *ContractRepository) CountByStatus(ctx context.Context, partyID uint) (map[model.ContractStatus]int64, error) {
	var rows []struct {
		Status model.ContractStatus
		Count  int64
	}
	query := r.db.WithContext(ctx).Model(&model.Contract{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	query = applyPartyScope(query, partyID)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.ContractStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *ContractRepository) CountExpiringBefore(ctx context.Context, cutoff time.Time, partyID uint) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Contract{}).
		Where("status = ?", model.ContractStatusActive).
		Where("expiry_date > ? AND expiry_date <= ?", time.Now(), cutoff)
	query = applyPartyScope(query, partyID)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyPartyScope restricts the query to contracts where the user is a
// party of record. A zero partyID means no restriction (admin scope).
func applyPartyScope(query *gorm.DB, partyID uint) *gorm.DB {
	if partyID == 0 {
		return query
	}
	return query.Where("landlord_id = ? OR tenant_id = ?", partyID, partyID)
}
