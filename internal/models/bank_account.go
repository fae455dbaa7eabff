package models

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount belongs to an organization; schedule lines may reference it.
type BankAccount struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	OrganizationID uint           `gorm:"index;not null" json:"organization_id"`
	Label          string         `gorm:"size:255;not null" json:"label"`
	IBAN           string         `gorm:"size:34" json:"iban,omitempty"`
	BIC            string         `gorm:"size:11" json:"bic,omitempty"`
	IsDefault      bool           `gorm:"not null;default:false" json:"is_default"`
}

// GetOrganizationID implements OrganizationOwned.
func (b *BankAccount) GetOrganizationID() uint { return b.OrganizationID }

// SetAsDefault flags b as the organization's only default account.
func (b *BankAccount) SetAsDefault(tx *gorm.DB) error {
	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&BankAccount{}).
			Where("organization_id = ? AND id <> ?", b.OrganizationID, b.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		b.IsDefault = true
		return tx.Model(b).Update("is_default", true).Error
	})
}

// OwnedBankAccountIDs returns the subset of ids that belong to orgID.
func OwnedBankAccountIDs(tx *gorm.DB, orgID uint, ids []uint) ([]uint, error) {
	var owned []uint
	if len(ids) == 0 {
		return owned, nil
	}
	err := tx.Model(&BankAccount{}).
		Where("organization_id = ? AND id IN ?", orgID, ids).
		Pluck("id", &owned).Error
	return owned, err
}
