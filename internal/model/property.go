package model

import "time"

type PropertyStatus string

const (
	PropertyStatusAvailable   PropertyStatus = "available"
	PropertyStatusRented      PropertyStatus = "rented"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
	PropertyStatusOffline     PropertyStatus = "offline"
)

type Property struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	LandlordID uint           `json:"landlordId" gorm:"not null;index"`
	Title      string         `json:"title" gorm:"size:128"`
	Address    string         `json:"address" gorm:"size:256"`
	Status     PropertyStatus `json:"status" gorm:"size:16;not null;index;default:'available'"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
