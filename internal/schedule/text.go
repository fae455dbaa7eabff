package schedule

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	textPrefix     = "Condition de paiement: "
	lineSeparator  = ", "
	dateLayout     = "02/01/2006"
	conditionLabel = "à payer "
	dateLabel      = "le: "
)

// GenerateText renders the payment terms of a schedule. Lines keep the caller's
// order. Per line the fragments are percentage, amount, condition and date,
// each only when its flag is on.
func GenerateText(lines []Line, opts DisplayOptions) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if frag := lineText(l, opts); frag != "" {
			parts = append(parts, frag)
		}
	}
	return textPrefix + strings.Join(parts, lineSeparator)
}

func lineText(l Line, opts DisplayOptions) string {
	var frags []string
	if opts.ShowPercentages {
		frags = append(frags, FormatPercentage(l.Percentage))
	}
	if opts.ShowAmounts {
		frags = append(frags, "soit "+FormatAmount(l.Amount)+" €")
	}
	if opts.ShowConditions && strings.TrimSpace(l.Condition) != "" {
		frags = append(frags, conditionLabel+strings.TrimSpace(l.Condition))
	}
	if opts.ShowDates && !l.Date.IsZero() {
		frags = append(frags, dateLabel+l.Date.Format(dateLayout))
	}
	return strings.Join(frags, " ")
}

// FormatPercentage renders p rounded to an integer, e.g. "30%".
func FormatPercentage(p decimal.Decimal) string {
	return p.Round(0).String() + "%"
}

// FormatAmount renders d with two decimals, a comma decimal separator and
// space-grouped thousands: 1234567.5 -> "1 234 567,50".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
