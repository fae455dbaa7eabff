package models

import (
	"time"

	"github.com/diewo77/go-backoffice/internal/schedule"
	"github.com/shopspring/decimal"
)

// ScheduleLineFields are the columns shared by invoice and quote installments.
type ScheduleLineFields struct {
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Percentage       decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PaymentCondition string          `gorm:"size:255"`
	Date             time.Time       `gorm:"type:date;not null"`
	PaymentMethod    string          `gorm:"size:50;not null"`
	BankID           *uint           `gorm:"index"`
	Position         int             `gorm:"not null"`
}

func newLineFields(l schedule.Line, position int) ScheduleLineFields {
	return ScheduleLineFields{
		Amount:           l.Amount.Round(2),
		Percentage:       l.Percentage.Round(2),
		PaymentCondition: l.Condition,
		Date:             DateOnly(l.Date),
		PaymentMethod:    l.PaymentMethod,
		BankID:           l.BankID,
		Position:         position,
	}
}

func (f ScheduleLineFields) line(id uint) schedule.Line {
	return schedule.Line{
		ID:            id,
		Amount:        f.Amount,
		Percentage:    f.Percentage,
		Condition:     f.PaymentCondition,
		Date:          f.Date,
		PaymentMethod: f.PaymentMethod,
		BankID:        f.BankID,
	}
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InvoiceScheduleLine is one installment of an invoice.
type InvoiceScheduleLine struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	InvoiceID uint `gorm:"index;not null"`
	ScheduleLineFields
	Status schedule.LineStatus `gorm:"size:20;not null;default:'pending';index"`
}

func (InvoiceScheduleLine) TableName() string { return "invoice_payment_schedules" }

// NewInvoiceScheduleLine builds a pending installment of invoiceID.
func NewInvoiceScheduleLine(invoiceID uint, position int, l schedule.Line) InvoiceScheduleLine {
	return InvoiceScheduleLine{
		InvoiceID:          invoiceID,
		ScheduleLineFields: newLineFields(l, position),
		Status:             schedule.LineStatusPending,
	}
}

// ToLine converts the row to the engine value, status included.
func (l InvoiceScheduleLine) ToLine() schedule.Line {
	return l.line(l.ID).WithStatus(l.Status)
}

// QuoteScheduleLine is one installment of a quote. Quote installments carry no status.
type QuoteScheduleLine struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	QuoteID   uint `gorm:"index;not null"`
	ScheduleLineFields
}

func (QuoteScheduleLine) TableName() string { return "quote_payment_schedules" }

// NewQuoteScheduleLine builds an installment of quoteID.
func NewQuoteScheduleLine(quoteID uint, position int, l schedule.Line) QuoteScheduleLine {
	return QuoteScheduleLine{QuoteID: quoteID, ScheduleLineFields: newLineFields(l, position)}
}

// ToLine converts the row to the engine value.
func (l QuoteScheduleLine) ToLine() schedule.Line {
	return l.line(l.ID)
}
