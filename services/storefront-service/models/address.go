package models

import "time"

// DefaultCountry is stored when an address arrives without one.
const DefaultCountry = "Bangladesh"

// Address is a saved shipping address. At most one per user has IsDefault.
type Address struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID    string    `gorm:"index;not null" json:"-"`
	FullName  string    `gorm:"not null" json:"fullName" binding:"required"`
	Phone     string    `gorm:"not null" json:"phone" binding:"required,bdphone"`
	Address   string    `gorm:"not null" json:"address" binding:"required"`
	District  string    `gorm:"not null" json:"district" binding:"required"`
	Thana     string    `gorm:"not null" json:"thana" binding:"required"`
	Country   string    `gorm:"not null" json:"country"`
	IsDefault bool      `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}
