package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

type lineInput struct {
	Amount        *decimal.Decimal `json:"amount" validate:"required,gte=0"`
	Percentage    *decimal.Decimal `json:"percentage" validate:"required,gte=0,lte=100"`
	PaymentMethod string           `json:"payment_method" validate:"required"`
}

type saveInput struct {
	PaymentSchedule []lineInput `json:"payment_schedule" validate:"required,min=1,dive"`
}

func dp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	Required("other", "x", v)
	if v.Empty() || v["name"][0] != "required" || v["other"] != nil {
		t.Fatalf("unexpected violations %v", v)
	}
}

func TestDecimalHelpers(t *testing.T) {
	v := Violations{}
	NonNegative("amount", decimal.NewFromInt(-1), v)
	RangeDecimal("percentage", decimal.NewFromInt(101), decimal.Zero, decimal.NewFromInt(100), v)
	RangeDecimal("ok", decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100), v)
	if v["amount"][0] != "must_be_positive" || v["percentage"][0] != "out_of_range" {
		t.Fatalf("unexpected violations %v", v)
	}
	if _, ok := v["ok"]; ok {
		t.Fatal("100 should be within [0,100]")
	}
}

func TestStruct_Valid(t *testing.T) {
	in := saveInput{PaymentSchedule: []lineInput{{Amount: dp("10"), Percentage: dp("100"), PaymentMethod: "virement"}}}
	if v := Struct(in); !v.Empty() {
		t.Fatalf("expected no violations, got %v", v)
	}
}

func TestStruct_FieldPaths(t *testing.T) {
	in := saveInput{PaymentSchedule: []lineInput{
		{Amount: dp("10"), Percentage: dp("50"), PaymentMethod: "virement"},
		{Amount: dp("-5"), Percentage: dp("150")},
	}}
	v := Struct(in)
	for _, f := range []string{"payment_schedule.1.amount", "payment_schedule.1.percentage", "payment_schedule.1.payment_method"} {
		if len(v[f]) == 0 {
			t.Errorf("expected violation for %s, got %v", f, v)
		}
	}
	if v["payment_schedule.1.percentage"][0] != "out_of_range" {
		t.Errorf("expected out_of_range, got %v", v["payment_schedule.1.percentage"])
	}
}

func TestStruct_MissingPointer(t *testing.T) {
	in := saveInput{PaymentSchedule: []lineInput{{PaymentMethod: "cb"}}}
	v := Struct(in)
	if v["payment_schedule.0.amount"][0] != "required" {
		t.Fatalf("expected required amount, got %v", v)
	}
}

func TestStruct_EmptySlice(t *testing.T) {
	v := Struct(saveInput{})
	if len(v["payment_schedule"]) == 0 {
		t.Fatalf("expected violation on payment_schedule, got %v", v)
	}
}

func TestIndex(t *testing.T) {
	if got := Index("payment_schedule", 2, "date"); got != "payment_schedule.2.date" {
		t.Fatalf("Index() = %q", got)
	}
}
