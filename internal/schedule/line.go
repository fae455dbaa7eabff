// Package schedule holds the payment schedule engine: validation of a set of
// installments, rendering of the payment terms text and the paid-amount
// reconciliation that drives an invoice status.
//
// The package is pure: it knows nothing about storage or HTTP.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineStatus is the payment state of an invoice installment.
type LineStatus string

const (
	LineStatusPending LineStatus = "pending"
	LineStatusPaid    LineStatus = "paid"
	LineStatusOverdue LineStatus = "overdue"
)

// ParseLineStatus accepts pending, paid or overdue (case-insensitive).
func ParseLineStatus(s string) (LineStatus, error) {
	switch st := LineStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case LineStatusPending, LineStatusPaid, LineStatusOverdue:
		return st, nil
	default:
		return "", fmt.Errorf("unknown line status %q", s)
	}
}

// Line is one installment. Invoice installments carry a Status; quote
// installments leave it nil.
type Line struct {
	ID            uint
	Amount        decimal.Decimal
	Percentage    decimal.Decimal
	Condition     string
	Date          time.Time
	PaymentMethod string
	BankID        *uint
	Status        *LineStatus
}

// HasStatus reports whether the line is the invoice variant.
func (l Line) HasStatus() bool { return l.Status != nil }

// IsPaid reports whether the installment has been paid.
func (l Line) IsPaid() bool { return l.Status != nil && *l.Status == LineStatusPaid }

// WithStatus returns a copy of l carrying status st.
func (l Line) WithStatus(st LineStatus) Line {
	l.Status = &st
	return l
}

// DisplayOptions toggles the components rendered by GenerateText.
// Flags apply to every line.
type DisplayOptions struct {
	ShowAmounts     bool
	ShowPercentages bool
	ShowDates       bool
	ShowConditions  bool
}

// DefaultDisplayOptions renders every component.
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{ShowAmounts: true, ShowPercentages: true, ShowDates: true, ShowConditions: true}
}
