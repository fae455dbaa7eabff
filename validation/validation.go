// Package validation collects per-field violations, either from the small
// helper checks below or from struct tags through go-playground/validator.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Violations maps a field path (e.g. "payment_schedule.0.amount") to message codes.
type Violations map[string][]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add appends code to field.
func (v Violations) Add(field, code string) {
	v[field] = append(v[field], code)
}

// Merge copies other into v.
func (v Violations) Merge(other Violations) {
	for f, codes := range other {
		v[f] = append(v[f], codes...)
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, "must_be_positive")
	}
}

func RangeDecimal(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v.Add(field, "out_of_range")
	}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// Struct validates s against its `validate` tags. Field paths use json names
// with slice indexes as segments: payment_schedule.0.date.
func Struct(s any) Violations {
	v := Violations{}
	err := engine().Struct(s)
	if err == nil {
		return v
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.Add("_", "invalid")
		return v
	}
	for _, fe := range verrs {
		v.Add(fieldPath(fe.Namespace()), codeFor(fe.Tag()))
	}
	return v
}

// fieldPath drops the root struct name and turns "items[2].x" into "items.2.x".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	var b strings.Builder
	for i := 0; i < len(ns); i++ {
		switch c := ns[i]; c {
		case '[':
			b.WriteByte('.')
		case ']':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func codeFor(tag string) string {
	switch tag {
	case "required", "required_without":
		return "required"
	case "gte", "lte", "min", "max", "gt", "lt":
		return "out_of_range"
	case "oneof":
		return "invalid_value"
	default:
		return tag
	}
}

// Index formats a slice element path, e.g. Index("payment_schedule", 2, "date").
func Index(prefix string, i int, field string) string {
	return prefix + "." + strconv.Itoa(i) + "." + field
}
