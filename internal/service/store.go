package service

import (
	"context"
	"time"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

// ContractFilter scopes list/count queries. PartyID, when non-zero,
// restricts results to contracts where the user is landlord or tenant.
type ContractFilter struct {
	Status     model.ContractStatus
	PropertyID uint
	PartyID    uint
	Page       int
	PageSize   int
}

type ContractStore interface {
	Create(ctx context.Context, contract *model.Contract) error
	Save(ctx context.Context, contract *model.Contract) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*model.Contract, error)

	// FindOverlapping returns an active or pending contract on the property
	// whose [effective, expiry) interval overlaps the given one, excluding
	// excludeID when non-zero. Returns (nil, nil) when there is no overlap.
	FindOverlapping(ctx context.Context, propertyID uint, effective, expiry time.Time, excludeID uint) (*model.Contract, error)

	List(ctx context.Context, filter ContractFilter) ([]model.Contract, int64, error)
	ExpiringBefore(ctx context.Context, cutoff time.Time, partyID uint) ([]model.Contract, error)
	CountByStatus(ctx context.Context, partyID uint) (map[model.ContractStatus]int64, error)
	CountExpiringBefore(ctx context.Context, cutoff time.Time, partyID uint) (int64, error)
}

type PropertyStore interface {
	GetByID(ctx context.Context, id uint) (*model.Property, error)

	// GetForUpdate loads the property with a row lock held for the rest of
	// the surrounding transaction, serializing check-then-write sequences.
	GetForUpdate(ctx context.Context, id uint) (*model.Property, error)

	SetStatus(ctx context.Context, id uint, status model.PropertyStatus) error
}

type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

// Store is the storage port injected into the lifecycle service. Transaction
// runs fn against a transactional view of the store; every read-then-write
// lifecycle operation executes inside one.
type Store interface {
	Contracts() ContractStore
	Properties() PropertyStore
	Users() UserStore
	Transaction(ctx context.Context, fn func(Store) error) error
}
