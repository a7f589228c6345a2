package model

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleLandlord UserRole = "landlord"
	RoleTenant   UserRole = "tenant"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"
)

type User struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"size:64"`
	Role      UserRole   `json:"role" gorm:"size:16;not null;index"`
	Status    UserStatus `json:"status" gorm:"size:16;not null;default:'active'"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Principal is the authenticated actor extracted from the access token.
type Principal struct {
	UserID uint
	Role   UserRole
}

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsLandlord() bool { return p.Role == RoleLandlord }
func (p Principal) IsTenant() bool   { return p.Role == RoleTenant }
