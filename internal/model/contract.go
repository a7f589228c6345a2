package model

import (
	"time"
)

type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"
	ContractStatusPending    ContractStatus = "pending"
	ContractStatusActive     ContractStatus = "active"
	ContractStatusExpired    ContractStatus = "expired"
	ContractStatusTerminated ContractStatus = "terminated"
	ContractStatusBreached   ContractStatus = "breached"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusPending, ContractStatusActive,
		ContractStatusExpired, ContractStatusTerminated, ContractStatusBreached:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMonthly      PaymentMethod = "monthly"
	PaymentQuarterly    PaymentMethod = "quarterly"
	PaymentSemiAnnually PaymentMethod = "semi_annually"
	PaymentAnnually     PaymentMethod = "annually"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMonthly, PaymentQuarterly, PaymentSemiAnnually, PaymentAnnually:
		return true
	}
	return false
}

// Contract binds one landlord, one tenant and one property for a bounded
// time window. Money fields are integer minor currency units.
type Contract struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	ContractNumber string         `json:"contractNumber" gorm:"size:32;uniqueIndex:uq_contract_number"`
	LandlordID     uint           `json:"landlordId" gorm:"not null;index"`
	TenantID       uint           `json:"tenantId" gorm:"not null;index"`
	PropertyID     uint           `json:"propertyId" gorm:"not null;index"`
	MonthlyRent    int64          `json:"monthlyRent" gorm:"not null"`
	Deposit        int64          `json:"deposit" gorm:"not null;default:0"`
	ManagementFee  int64          `json:"managementFee" gorm:"not null;default:0"`
	OtherFees      int64          `json:"otherFees" gorm:"not null;default:0"`
	SignedDate     time.Time      `json:"signedDate" gorm:"not null"`
	EffectiveDate  time.Time      `json:"effectiveDate" gorm:"not null;index"`
	ExpiryDate     time.Time      `json:"expiryDate" gorm:"not null;index"`
	LeaseDuration  int            `json:"leaseDuration" gorm:"not null"`
	PaymentMethod  PaymentMethod  `json:"paymentMethod" gorm:"size:16;not null"`
	PaymentDay     int            `json:"paymentDay" gorm:"not null"`
	Status         ContractStatus `json:"status" gorm:"size:16;not null;index;default:'draft'"`
	Terms          JSONMap        `json:"terms" gorm:"type:text"`
	Notes          string         `json:"notes" gorm:"type:text"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Landlord *User     `json:"landlord,omitempty" gorm:"foreignKey:LandlordID"`
	Tenant   *User     `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// IsParty reports whether the user is the landlord or tenant of record.
func (c *Contract) IsParty(userID uint) bool {
	return c.LandlordID == userID || c.TenantID == userID
}

// ContractStatistics is the per-scope status breakdown.
type ContractStatistics struct {
	Total        int64 `json:"total"`
	Draft        int64 `json:"draft"`
	Pending      int64 `json:"pending"`
	Active       int64 `json:"active"`
	Expired      int64 `json:"expired"`
	Terminated   int64 `json:"terminated"`
	Breached     int64 `json:"breached"`
	ExpiringSoon int64 `json:"expiringSoon"`
}

// ContractRegister is the export view consumed by the excel generator.
type ContractRegister struct {
	Scope       string
	GeneratedAt time.Time
	Total       int64
	Sections    []RegisterSection
}

type RegisterSection struct {
	Status    ContractStatus
	Contracts []Contract
}

// LeaseDocument aggregates everything the PDF generator needs.
type LeaseDocument struct {
	Contract Contract
	Property Property
	Landlord User
	Tenant   User
}
