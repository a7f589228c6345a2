package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/TDXM1001/zugou-rental/internal/config"
	"github.com/TDXM1001/zugou-rental/internal/model"
)

type ExcelGenerator interface {
	Generate(register model.ContractRegister) ([]byte, error)
}

type PDFGenerator interface {
	Generate(doc model.LeaseDocument) ([]byte, error)
}

// ContractService orchestrates the contract lifecycle: validation,
// availability checking, status transitions and their property cascades.
type ContractService struct {
	store        Store
	excel        ExcelGenerator
	pdf          PDFGenerator
	expiringDays int
}

func NewContractService(store Store, excel ExcelGenerator, pdf PDFGenerator, cfg *config.Config) *ContractService {
	return &ContractService{
		store:        store,
		excel:        excel,
		pdf:          pdf,
		expiringDays: cfg.Contracts.ExpiringDays,
	}
}

type CreateContractInput struct {
	LandlordID    uint
	TenantID      uint
	PropertyID    uint
	MonthlyRent   int64
	Deposit       int64
	ManagementFee int64
	OtherFees     int64
	SignedDate    time.Time
	EffectiveDate time.Time
	ExpiryDate    time.Time
	LeaseDuration int
	PaymentMethod model.PaymentMethod
	PaymentDay    int
	Terms         model.JSONMap
	Notes         string
}

type UpdateContractInput struct {
	PropertyID    *uint
	MonthlyRent   *int64
	Deposit       *int64
	ManagementFee *int64
	OtherFees     *int64
	SignedDate    *time.Time
	EffectiveDate *time.Time
	ExpiryDate    *time.Time
	LeaseDuration *int
	PaymentMethod *model.PaymentMethod
	PaymentDay    *int
	Terms         model.JSONMap
	Notes         *string
}

type ContractPage struct {
	Items    []model.Contract `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int64            `json:"total"`
}

type ListContractsInput struct {
	Status     model.ContractStatus
	PropertyID uint
	Page       int
	PageSize   int
}

func (s *ContractService) CreateContract(ctx context.Context, input CreateContractInput, actor model.Principal) (*model.Contract, error) {
	if !actor.IsAdmin() && !(actor.IsLandlord() && actor.UserID == input.LandlordID) {
		return nil, fmt.Errorf("%w: only the named landlord or an admin can create a contract", ErrPermissionDenied)
	}

	if err := validateParties(input.LandlordID, input.TenantID); err != nil {
		return nil, err
	}
	if err := validateDates(input.SignedDate, input.EffectiveDate, input.ExpiryDate, input.LeaseDuration); err != nil {
		return nil, err
	}
	if err := validateMoney(input.MonthlyRent, input.Deposit, input.ManagementFee, input.OtherFees); err != nil {
		return nil, err
	}
	if err := validatePaymentPolicy(input.PaymentMethod, input.PaymentDay); err != nil {
		return nil, err
	}

	var created *model.Contract
	err := s.store.Transaction(ctx, func(tx Store) error {
		property, err := tx.Properties().GetForUpdate(ctx, input.PropertyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: property %d", ErrNotFound, input.PropertyID)
			}
			return err
		}
		if property.LandlordID != input.LandlordID {
			return fmt.Errorf("%w: property does not belong to the landlord", ErrBusinessRule)
		}
		if property.Status != model.PropertyStatusAvailable {
			return fmt.Errorf("%w: property is %s, not available for rent", ErrBusinessRule, property.Status)
		}

		landlord, err := tx.Users().GetByID(ctx, input.LandlordID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: landlord %d", ErrNotFound, input.LandlordID)
			}
			return err
		}
		if landlord.Role != model.RoleLandlord && landlord.Role != model.RoleAdmin {
			return fmt.Errorf("%w: user %d is not a landlord", ErrBusinessRule, input.LandlordID)
		}

		tenant, err := tx.Users().GetByID(ctx, input.TenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: tenant %d", ErrNotFound, input.TenantID)
			}
			return err
		}
		if tenant.Role != model.RoleTenant {
			return fmt.Errorf("%w: user %d is not a tenant", ErrBusinessRule, input.TenantID)
		}
		if tenant.Status != model.UserStatusActive {
			return fmt.Errorf("%w: tenant account is %s", ErrBusinessRule, tenant.Status)
		}

		conflict, err := tx.Contracts().FindOverlapping(ctx, input.PropertyID, input.EffectiveDate, input.ExpiryDate, 0)
		if err != nil {
			return err
		}
		if conflict != nil {
			return fmt.Errorf("%w: property is already booked by contract %s", ErrConflict, conflict.ContractNumber)
		}

		contract := &model.Contract{
			LandlordID:    input.LandlordID,
			TenantID:      input.TenantID,
			PropertyID:    input.PropertyID,
			MonthlyRent:   input.MonthlyRent,
			Deposit:       input.Deposit,
			ManagementFee: input.ManagementFee,
			OtherFees:     input.OtherFees,
			SignedDate:    input.SignedDate,
			EffectiveDate: input.EffectiveDate,
			ExpiryDate:    input.ExpiryDate,
			LeaseDuration: input.LeaseDuration,
			PaymentMethod: input.PaymentMethod,
			PaymentDay:    input.PaymentDay,
			Status:        model.ContractStatusDraft,
			Terms:         input.Terms,
			Notes:         input.Notes,
		}

		// Uniqueness is backstopped by uq_contract_number; retry once.
		for attempt := 0; ; attempt++ {
			number, err := GenerateContractNumber()
			if err != nil {
				return err
			}
			contract.ContractNumber = number
			err = tx.Contracts().Create(ctx, contract)
			if err == nil {
				break
			}
			if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= 1 {
				return err
			}
		}

		created = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ContractService) UpdateContract(ctx context.Context, id uint, patch UpdateContractInput, actor model.Principal) (*model.Contract, error) {
	var updated *model.Contract
	err := s.store.Transaction(ctx, func(tx Store) error {
		contract, err := s.loadContract(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canManage(actor, contract) {
			return fmt.Errorf("%w: only the landlord of record or an admin can modify the contract", ErrPermissionDenied)
		}
		if contract.Status != model.ContractStatusDraft && contract.Status != model.ContractStatusPending {
			return fmt.Errorf("%w: contract cannot be modified while %s", ErrBusinessRule, contract.Status)
		}

		datesChanged := patch.SignedDate != nil || patch.EffectiveDate != nil ||
			patch.ExpiryDate != nil || patch.LeaseDuration != nil
		propertyChanged := patch.PropertyID != nil && *patch.PropertyID != contract.PropertyID

		applyPatch(contract, patch)

		if err := validateDates(contract.SignedDate, contract.EffectiveDate, contract.ExpiryDate, contract.LeaseDuration); err != nil {
			return err
		}
		if err := validateMoney(contract.MonthlyRent, contract.Deposit, contract.ManagementFee, contract.OtherFees); err != nil {
			return err
		}
		if err := validatePaymentPolicy(contract.PaymentMethod, contract.PaymentDay); err != nil {
			return err
		}

		if datesChanged || propertyChanged {
			property, err := tx.Properties().GetForUpdate(ctx, contract.PropertyID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: property %d", ErrNotFound, contract.PropertyID)
				}
				return err
			}
			if propertyChanged {
				if property.LandlordID != contract.LandlordID {
					return fmt.Errorf("%w: property does not belong to the landlord", ErrBusinessRule)
				}
				if property.Status != model.PropertyStatusAvailable {
					return fmt.Errorf("%w: property is %s, not available for rent", ErrBusinessRule, property.Status)
				}
			}
			conflict, err := tx.Contracts().FindOverlapping(ctx, contract.PropertyID, contract.EffectiveDate, contract.ExpiryDate, contract.ID)
			if err != nil {
				return err
			}
			if conflict != nil {
				return fmt.Errorf("%w: property is already booked by contract %s", ErrConflict, conflict.ContractNumber)
			}
		}

		if err := tx.Contracts().Save(ctx, contract); err != nil {
			return err
		}
		updated = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ContractService) DeleteContract(ctx context.Context, id uint, actor model.Principal) error {
	return s.store.Transaction(ctx, func(tx Store) error {
		contract, err := s.loadContract(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canManage(actor, contract) {
			return fmt.Errorf("%w: only the landlord of record or an admin can delete the contract", ErrPermissionDenied)
		}
		if contract.Status != model.ContractStatusDraft {
			return fmt.Errorf("%w: only draft contracts can be deleted", ErrBusinessRule)
		}
		return tx.Contracts().Delete(ctx, contract.ID)
	})
}

func (s *ContractService) SignContract(ctx context.Context, id uint, actor model.Principal) (*model.Contract, error) {
	var signed *model.Contract
	err := s.store.Transaction(ctx, func(tx Store) error {
		contract, err := s.loadContract(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canAccess(actor, contract) {
			return fmt.Errorf("%w: no access to this contract", ErrPermissionDenied)
		}
		if err := checkTransition(contract.Status, model.ContractStatusPending); err != nil {
			return err
		}
		contract.Status = model.ContractStatusPending
		if err := tx.Contracts().Save(ctx, contract); err != nil {
			return err
		}
		signed = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return signed, nil
}

func (s *ContractService) ActivateContract(ctx context.Context, id uint, actor model.Principal) (*model.Contract, error) {
	var activated *model.Contract
	err := s.store.Transaction(ctx, func(tx Store) error {
		contract, err := s.loadContract(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canManage(actor, contract) {
			return fmt.Errorf("%w: only the landlord of record or an admin can activate the contract", ErrPermissionDenied)
		}
		if err := checkTransition(contract.Status, model.ContractStatusActive); err != nil {
			return err
		}

		if _, err := tx.Properties().GetForUpdate(ctx, contract.PropertyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: property %d", ErrNotFound, contract.PropertyID)
			}
			return err
		}

		contract.Status = model.ContractStatusActive
		if err := tx.Contracts().Save(ctx, contract); err != nil {
			return err
		}
		if err := tx.Properties().SetStatus(ctx, contract.PropertyID, model.PropertyStatusRented); err != nil {
			return err
		}
		activated = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

func (s *ContractService) TerminateContract(ctx context.Context, id uint, reason string, actor model.Principal) (*model.Contract, error) {
	var terminated *model.Contract
	err := s.store.Transaction(ctx, func(tx Store) error {
		contract, err := s.loadContract(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canAccess(actor, contract) {
			return fmt.Errorf("%w: no access to this contract", ErrPermissionDenied)
		}
		if err := checkTransition(contract.Status, model.ContractStatusTerminated); err != nil {
			return err
		}

		wasActive := contract.Status == model.ContractStatusActive
		if wasActive {
			if _, err := tx.Properties().GetForUpdate(ctx, contract.PropertyID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: property %d", ErrNotFound, contract.PropertyID)
				}
				return err
			}
		}

		contract.Status = model.ContractStatusTerminated
		contract.Notes = appendNote(contract.Notes, "termination reason: "+reason)
		if err := tx.Contracts().Save(ctx, contract); err != nil {
			return err
		}
		if wasActive {
			if err := tx.Properties().SetStatus(ctx, contract.PropertyID, model.PropertyStatusAvailable); err != nil {
				return err
			}
		}
		terminated = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return terminated, nil
}

// MarkBreached records a breach of an active contract. The property stays
// rented until the contract is terminated.
func (s *ContractService) MarkBreached(ctx context.Context, id uint, reason string, actor model.Principal) (*model.Contract, error) {
	var breached *model.Contract
	err := s.store.Transaction(ctx, func(tx Store) error {
		contract, err := s.loadContract(ctx, tx, id)
		if err != nil {
			return err
		}
		if !canManage(actor, contract) {
			return fmt.Errorf("%w: only the landlord of record or an admin can mark a breach", ErrPermissionDenied)
		}
		if err := checkTransition(contract.Status, model.ContractStatusBreached); err != nil {
			return err
		}
		contract.Status = model.ContractStatusBreached
		contract.Notes = appendNote(contract.Notes, "breach reason: "+reason)
		if err := tx.Contracts().Save(ctx, contract); err != nil {
			return err
		}
		breached = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return breached, nil
}

func (s *ContractService) GetContract(ctx context.Context, id uint, actor model.Principal) (*model.Contract, error) {
	contract, err := s.loadContract(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, contract) {
		return nil, fmt.Errorf("%w: no access to this contract", ErrPermissionDenied)
	}
	return contract, nil
}

func (s *ContractService) ListContracts(ctx context.Context, input ListContractsInput, actor model.Principal) (*ContractPage, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, input.Status)
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	filter := ContractFilter{
		Status:     input.Status,
		PropertyID: input.PropertyID,
		Page:       page,
		PageSize:   pageSize,
	}
	if !actor.IsAdmin() {
		filter.PartyID = actor.UserID
	}

	items, total, err := s.store.Contracts().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ContractPage{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func (s *ContractService) ExpiringContracts(ctx context.Context, days int, actor model.Principal) ([]model.Contract, error) {
	if days <= 0 {
		days = s.expiringDays
	}
	cutoff := time.Now().AddDate(0, 0, days)
	partyID := uint(0)
	if !actor.IsAdmin() {
		partyID = actor.UserID
	}
	return s.store.Contracts().ExpiringBefore(ctx, cutoff, partyID)
}

func (s *ContractService) Statistics(ctx context.Context, actor model.Principal) (*model.ContractStatistics, error) {
	partyID := uint(0)
	if !actor.IsAdmin() {
		partyID = actor.UserID
	}

	counts, err := s.store.Contracts().CountByStatus(ctx, partyID)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(0, 0, s.expiringDays)
	expiring, err := s.store.Contracts().CountExpiringBefore(ctx, cutoff, partyID)
	if err != nil {
		return nil, err
	}

	stats := &model.ContractStatistics{
		Draft:        counts[model.ContractStatusDraft],
		Pending:      counts[model.ContractStatusPending],
		Active:       counts[model.ContractStatusActive],
		Expired:      counts[model.ContractStatusExpired],
		Terminated:   counts[model.ContractStatusTerminated],
		Breached:     counts[model.ContractStatusBreached],
		ExpiringSoon: expiring,
	}
	stats.Total = stats.Draft + stats.Pending + stats.Active + stats.Expired + stats.Terminated + stats.Breached
	return stats, nil
}

func (s *ContractService) loadContract(ctx context.Context, store Store, id uint) (*model.Contract, error) {
	contract, err := store.Contracts().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %d", ErrNotFound, id)
		}
		return nil, err
	}
	return contract, nil
}

// canAccess: any party of record or an admin.
func canAccess(actor model.Principal, contract *model.Contract) bool {
	return actor.IsAdmin() || contract.IsParty(actor.UserID)
}

// canManage: the landlord of record or an admin.
func canManage(actor model.Principal, contract *model.Contract) bool {
	return actor.IsAdmin() || (actor.IsLandlord() && contract.LandlordID == actor.UserID)
}

func applyPatch(contract *model.Contract, patch UpdateContractInput) {
	if patch.PropertyID != nil {
		contract.PropertyID = *patch.PropertyID
	}
	if patch.MonthlyRent != nil {
		contract.MonthlyRent = *patch.MonthlyRent
	}
	if patch.Deposit != nil {
		contract.Deposit = *patch.Deposit
	}
	if patch.ManagementFee != nil {
		contract.ManagementFee = *patch.ManagementFee
	}
	if patch.OtherFees != nil {
		contract.OtherFees = *patch.OtherFees
	}
	if patch.SignedDate != nil {
		contract.SignedDate = *patch.SignedDate
	}
	if patch.EffectiveDate != nil {
		contract.EffectiveDate = *patch.EffectiveDate
	}
	if patch.ExpiryDate != nil {
		contract.ExpiryDate = *patch.ExpiryDate
	}
	if patch.LeaseDuration != nil {
		contract.LeaseDuration = *patch.LeaseDuration
	}
	if patch.PaymentMethod != nil {
		contract.PaymentMethod = *patch.PaymentMethod
	}
	if patch.PaymentDay != nil {
		contract.PaymentDay = *patch.PaymentDay
	}
	if patch.Terms != nil {
		contract.Terms = patch.Terms
	}
	if patch.Notes != nil {
		contract.Notes = *patch.Notes
	}
}

func appendNote(notes, entry string) string {
	entry = strings.TrimSpace(entry)
	if notes == "" {
		return entry
	}
	return notes + "\n" + entry
}
