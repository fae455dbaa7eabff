package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusPending       InvoiceStatus = "pending"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// Invoice is the payable side of a sale. AmountPaid and Status are driven by
// the paid installments of its schedule.
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrganizationID uint          `gorm:"index;not null" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"-"`

	Number     string          `gorm:"size:50;uniqueIndex" json:"number"`
	TotalTTC   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_ttc"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	Status     InvoiceStatus   `gorm:"size:20;not null;default:'draft'" json:"status"`

	// ScheduleText is the rendered payment terms.
	ScheduleText string `gorm:"column:payment_schedule_text;type:text" json:"payment_schedule_text"`

	ScheduleLines []InvoiceScheduleLine `gorm:"foreignKey:InvoiceID" json:"-"`
}

func (i *Invoice) GetID() uint                 { return i.ID }
func (i *Invoice) GetOrganizationID() uint     { return i.OrganizationID }
func (i *Invoice) Kind() DocumentKind          { return KindInvoice }
func (i *Invoice) PaymentScheduleText() string { return i.ScheduleText }
func (i *Invoice) PaymentConditions() string   { return i.ScheduleText }
