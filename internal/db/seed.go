package db

import (
	"errors"

	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SystemTemplates are the payment condition presets every organization sees.
func SystemTemplates() []models.PaymentConditionTemplate {
	return []models.PaymentConditionTemplate{
		{Name: "Paiement à réception", Description: "Totalité à réception de facture", Percentage: decimal.NewFromInt(100), Days: 0, PaymentMethod: "virement"},
		{Name: "30 jours", Description: "Totalité à 30 jours", Percentage: decimal.NewFromInt(100), Days: 30, PaymentMethod: "virement"},
		{Name: "45 jours fin de mois", Description: "Totalité à 45 jours fin de mois", Percentage: decimal.NewFromInt(100), Days: 45, PaymentMethod: "virement"},
		{Name: "Acompte 30%", Description: "Acompte de 30% à la commande", Percentage: decimal.NewFromInt(30), Days: 0, PaymentMethod: "virement"},
		{Name: "Acompte 50%", Description: "Acompte de 50% à la commande", Percentage: decimal.NewFromInt(50), Days: 0, PaymentMethod: "virement"},
	}
}

// Seed inserts the system templates that are missing. It is safe to run on
// every start.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, tpl := range SystemTemplates() {
			var existing models.PaymentConditionTemplate
			err := tx.Where("name = ? AND is_system = ?", tpl.Name, true).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			tpl.IsSystem = true
			if err := tx.Create(&tpl).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
