package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteStatus represents the status of a quote.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRefused  QuoteStatus = "refused"
)

// Quote carries a schedule but is never reconciled.
type Quote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrganizationID uint          `gorm:"index;not null" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"-"`

	Number   string          `gorm:"size:50;uniqueIndex" json:"number"`
	TotalTTC decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_ttc"`
	Status   QuoteStatus     `gorm:"size:20;not null;default:'draft'" json:"status"`

	ScheduleText string `gorm:"column:payment_schedule_text;type:text" json:"payment_schedule_text"`

	ScheduleLines []QuoteScheduleLine `gorm:"foreignKey:QuoteID" json:"-"`
}

func (q *Quote) GetID() uint                 { return q.ID }
func (q *Quote) GetOrganizationID() uint     { return q.OrganizationID }
func (q *Quote) Kind() DocumentKind          { return KindQuote }
func (q *Quote) PaymentScheduleText() string { return q.ScheduleText }
func (q *Quote) PaymentConditions() string   { return q.ScheduleText }
