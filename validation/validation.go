// Package validation collects field-level input violations keyed by JSON field name.
package validation

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Merge copies other into v under prefix ("items.0." etc.).
func (v Violations) Merge(prefix string, other Violations) {
	for k, code := range other {
		v.Add(prefix+k, code)
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func MaxLength(field, value string, n int, v Violations) {
	if len([]rune(value)) > n {
		v.Add(field, "too_long")
	}
}

// Email accepts an empty value; use Required for mandatory addresses.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v.Add(field, "invalid_email")
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, "must_be_non_negative")
	}
}

func Positive(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v.Add(field, "must_be_positive")
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v.Add(field, "must_be_non_negative")
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, "invalid_choice")
}
