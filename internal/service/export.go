package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/TDXM1001/zugou-rental/internal/model"
)

type ExportResult struct {
	FileName string
	Content  []byte
}

// registerOrder fixes the section order of the exported workbook.
var registerOrder = []model.ContractStatus{
	model.ContractStatusDraft,
	model.ContractStatusPending,
	model.ContractStatusActive,
	model.ContractStatusExpired,
	model.ContractStatusTerminated,
	model.ContractStatusBreached,
}

// ExportContracts builds the contract register workbook for everything the
// actor is allowed to see.
func (s *ContractService) ExportContracts(ctx context.Context, actor model.Principal) (*ExportResult, error) {
	filter := ContractFilter{}
	scope := "all"
	if !actor.IsAdmin() {
		filter.PartyID = actor.UserID
		scope = fmt.Sprintf("user-%d", actor.UserID)
	}

	items, total, err := s.store.Contracts().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[model.ContractStatus][]model.Contract)
	for _, contract := range items {
		byStatus[contract.Status] = append(byStatus[contract.Status], contract)
	}

	register := model.ContractRegister{
		Scope:       scope,
		GeneratedAt: time.Now(),
		Total:       total,
	}
	for _, status := range registerOrder {
		contracts := byStatus[status]
		if len(contracts) == 0 {
			continue
		}
		register.Sections = append(register.Sections, model.RegisterSection{
			Status:    status,
			Contracts: contracts,
		})
	}

	content, err := s.excel.Generate(register)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("contracts-%s-%s.xlsx", scope, register.GeneratedAt.Format("20060102"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// ContractDocument renders the printable lease agreement for a contract the
// actor has access to.
func (s *ContractService) ContractDocument(ctx context.Context, id uint, actor model.Principal) (*ExportResult, error) {
	contract, err := s.GetContract(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	property, err := s.store.Properties().GetByID(ctx, contract.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: property %d", ErrNotFound, contract.PropertyID)
		}
		return nil, err
	}
	landlord, err := s.store.Users().GetByID(ctx, contract.LandlordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: landlord %d", ErrNotFound, contract.LandlordID)
		}
		return nil, err
	}
	tenant, err := s.store.Users().GetByID(ctx, contract.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: tenant %d", ErrNotFound, contract.TenantID)
		}
		return nil, err
	}

	content, err := s.pdf.Generate(model.LeaseDocument{
		Contract: *contract,
		Property: *property,
		Landlord: *landlord,
		Tenant:   *tenant,
	})
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("contract-%s.pdf", contract.ContractNumber)
	return &ExportResult{FileName: fileName, Content: content}, nil
}
