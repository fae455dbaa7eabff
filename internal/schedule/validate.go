package schedule

import (
	"fmt"

	"github.com/diewo77/go-backoffice/internal/apperr"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// PercentageTolerance is the accepted gap between the percentage sum and 100.
	PercentageTolerance = decimal.RequireFromString("0.01")
)

// Normalize returns a copy of lines with amounts and percentages rounded to
// two decimals, the precision they are stored with. Validate the result, not
// the raw input, so the stored schedule keeps the sum within tolerance.
func Normalize(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		l.Amount = l.Amount.Round(2)
		l.Percentage = l.Percentage.Round(2)
		out[i] = l
	}
	return out
}

// SumPercentages adds the percentage of every line.
func SumPercentages(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Percentage)
	}
	return sum
}

// Validate checks a proposed schedule before anything is persisted.
// Lines must be non-empty, each amount >= 0, each percentage in [0,100], and
// the percentages must sum to 100 within PercentageTolerance. Field messages
// are message codes.
func Validate(lines []Line) error {
	if len(lines) == 0 {
		return apperr.Validation(apperr.CodeScheduleEmpty, map[string][]string{
			"payment_schedule": {"required"},
		})
	}
	fields := map[string][]string{}
	for i, l := range lines {
		if l.Amount.IsNegative() {
			key := fmt.Sprintf("payment_schedule.%d.amount", i)
			fields[key] = append(fields[key], "must_be_positive")
		}
		if l.Percentage.IsNegative() || l.Percentage.GreaterThan(hundred) {
			key := fmt.Sprintf("payment_schedule.%d.percentage", i)
			fields[key] = append(fields[key], "out_of_range")
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(apperr.CodeValidationFailed, fields)
	}
	sum := SumPercentages(lines)
	if sum.Sub(hundred).Abs().GreaterThan(PercentageTolerance) {
		return apperr.Validation(apperr.CodeSchedulePercentageMismatch, map[string][]string{
			"payment_schedule": {"schedule_percentage_mismatch"},
		})
	}
	return nil
}
