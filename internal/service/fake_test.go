package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

// fakeStore is an in-memory Store for exercising the lifecycle service
// without a database.
type fakeStore struct {
	contracts  map[uint]*model.Contract
	properties map[uint]*model.Property
	users      map[uint]*model.User
	nextID     uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contracts:  make(map[uint]*model.Contract),
		properties: make(map[uint]*model.Property),
		users:      make(map[uint]*model.User),
		nextID:     1,
	}
}

func (f *fakeStore) Contracts() ContractStore  { return &fakeContracts{store: f} }
func (f *fakeStore) Properties() PropertyStore { return &fakeProperties{store: f} }
func (f *fakeStore) Users() UserStore          { return &fakeUsers{store: f} }

func (f *fakeStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return fn(f)
}

func (f *fakeStore) addUser(user model.User) *model.User {
	f.users[user.ID] = &user
	return &user
}

func (f *fakeStore) addProperty(property model.Property) *model.Property {
	f.properties[property.ID] = &property
	return &property
}

type fakeContracts struct {
	store *fakeStore
}

func (f *fakeContracts) Create(ctx context.Context, contract *model.Contract) error {
	for _, existing := range f.store.contracts {
		if existing.ContractNumber == contract.ContractNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	contract.ID = f.store.nextID
	f.store.nextID++
	contract.CreatedAt = time.Now()
	contract.UpdatedAt = contract.CreatedAt
	stored := *contract
	f.store.contracts[contract.ID] = &stored
	return nil
}

func (f *fakeContracts) Save(ctx context.Context, contract *model.Contract) error {
	if _, ok := f.store.contracts[contract.ID]; !ok {
		return fmt.Errorf("save of unknown contract %d", contract.ID)
	}
	contract.UpdatedAt = time.Now()
	stored := *contract
	f.store.contracts[contract.ID] = &stored
	return nil
}

func (f *fakeContracts) Delete(ctx context.Context, id uint) error {
	delete(f.store.contracts, id)
	return nil
}

func (f *fakeContracts) GetByID(ctx context.Context, id uint) (*model.Contract, error) {
	contract, ok := f.store.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *contract
	return &copied, nil
}

func (f *fakeContracts) FindOverlapping(ctx context.Context, propertyID uint, effective, expiry time.Time, excludeID uint) (*model.Contract, error) {
	for _, contract := range f.sorted() {
		if contract.PropertyID != propertyID || contract.ID == excludeID {
			continue
		}
		if contract.Status != model.ContractStatusActive && contract.Status != model.ContractStatusPending {
			continue
		}
		if overlaps(contract.EffectiveDate, contract.ExpiryDate, effective, expiry) {
			copied := *contract
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeContracts) List(ctx context.Context, filter ContractFilter) ([]model.Contract, int64, error) {
	var matched []model.Contract
	for _, contract := range f.sorted() {
		if filter.PartyID != 0 && !contract.IsParty(filter.PartyID) {
			continue
		}
		if filter.Status != "" && contract.Status != filter.Status {
			continue
		}
		if filter.PropertyID != 0 && contract.PropertyID != filter.PropertyID {
			continue
		}
		matched = append(matched, *contract)
	}
	total := int64(len(matched))
	if filter.PageSize > 0 {
		start := (filter.Page - 1) * filter.PageSize
		if start >= len(matched) {
			return nil, total, nil
		}
		end := start + filter.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (f *fakeContracts) ExpiringBefore(ctx context.Context, cutoff time.Time, partyID uint) ([]model.Contract, error) {
	now := time.Now()
	var matched []model.Contract
	for _, contract := range f.sorted() {
		if partyID != 0 && !contract.IsParty(partyID) {
			continue
		}
		if contract.Status != model.ContractStatusActive {
			continue
		}
		if contract.ExpiryDate.After(now) && !contract.ExpiryDate.After(cutoff) {
			matched = append(matched, *contract)
		}
	}
	return matched, nil
}

func (f *fakeContracts) CountByStatus(ctx context.Context, partyID uint) (map[model.ContractStatus]int64, error) {
	counts := make(map[model.ContractStatus]int64)
	for _, contract := range f.store.contracts {
		if partyID != 0 && !contract.IsParty(partyID) {
			continue
		}
		counts[contract.Status]++
	}
	return counts, nil
}

func (f *fakeContracts) CountExpiringBefore(ctx context.Context, cutoff time.Time, partyID uint) (int64, error) {
	matched, err := f.ExpiringBefore(ctx, cutoff, partyID)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (f *fakeContracts) sorted() []*model.Contract {
	contracts := make([]*model.Contract, 0, len(f.store.contracts))
	for _, contract := range f.store.contracts {
		contracts = append(contracts, contract)
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].ID < contracts[j].ID })
	return contracts
}

type fakeProperties struct {
	store *fakeStore
}

func (f *fakeProperties) GetByID(ctx context.Context, id uint) (*model.Property, error) {
	property, ok := f.store.properties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *property
	return &copied, nil
}

func (f *fakeProperties) GetForUpdate(ctx context.Context, id uint) (*model.Property, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeProperties) SetStatus(ctx context.Context, id uint, status model.PropertyStatus) error {
	property, ok := f.store.properties[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	property.Status = status
	return nil
}

type fakeUsers struct {
	store *fakeStore
}

func (f *fakeUsers) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, ok := f.store.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

type stubExcel struct {
	lastRegister model.ContractRegister
}

func (s *stubExcel) Generate(register model.ContractRegister) ([]byte, error) {
	s.lastRegister = register
	return []byte("xlsx"), nil
}

type stubPDF struct {
	lastDoc model.LeaseDocument
}

func (s *stubPDF) Generate(doc model.LeaseDocument) ([]byte, error) {
	s.lastDoc = doc
	return []byte("%PDF-stub"), nil
}
