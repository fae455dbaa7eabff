package models

// DocumentKind tells invoices and quotes apart.
type DocumentKind string

const (
	KindInvoice DocumentKind = "invoice"
	KindQuote   DocumentKind = "quote"
)

// OrganizationOwned is implemented by every tenant-scoped model.
type OrganizationOwned interface {
	GetOrganizationID() uint
}

// PayableDocument is the view of an invoice or quote the schedule engine works on.
type PayableDocument interface {
	OrganizationOwned
	GetID() uint
	Kind() DocumentKind
	PaymentScheduleText() string
	// PaymentConditions is the legacy name of PaymentScheduleText.
	PaymentConditions() string
}
