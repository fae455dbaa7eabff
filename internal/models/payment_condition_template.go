package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentConditionTemplate is a reusable installment preset. System templates
// have no organization and are visible to every tenant.
type PaymentConditionTemplate struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	OrganizationID *uint           `gorm:"index" json:"organization_id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	Percentage     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Days           int             `gorm:"not null" json:"days"`
	PaymentMethod  string          `gorm:"size:50" json:"payment_method,omitempty"`
	IsSystem       bool            `gorm:"not null;default:false;index" json:"is_system"`
}

// AvailableFor scopes a query to system templates and the templates of orgID.
func AvailableFor(orgID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_system = ? OR organization_id = ?", true, orgID)
	}
}
