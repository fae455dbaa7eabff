package schedule

import "github.com/shopspring/decimal"

// DocumentStatus mirrors the invoice status values touched by reconciliation.
type DocumentStatus string

const (
	DocumentStatusPartiallyPaid DocumentStatus = "partially_paid"
	DocumentStatusPaid          DocumentStatus = "paid"
)

// PaidAmount sums the amount of every paid line.
func PaidAmount(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.IsPaid() {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// DeriveDocumentStatus returns the status of a document with total amount
// total after paid has been collected: paid once paid >= total,
// partially_paid when something was paid, current otherwise.
func DeriveDocumentStatus(current string, paid, total decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return string(DocumentStatusPaid)
	case paid.IsPositive():
		return string(DocumentStatusPartiallyPaid)
	default:
		return current
	}
}

// Reconciliation is the outcome of Reconcile.
type Reconciliation struct {
	AmountPaid decimal.Decimal
	Status     string
}

// Reconcile recomputes the paid amount of a document from its lines and
// derives the resulting status.
func Reconcile(lines []Line, currentStatus string, total decimal.Decimal) Reconciliation {
	paid := PaidAmount(lines)
	return Reconciliation{AmountPaid: paid, Status: DeriveDocumentStatus(currentStatus, paid, total)}
}
