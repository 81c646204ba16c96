// Package pricing implements the cost and profit arithmetic behind quotes:
// currency conversion into the accounting currency, line-item cost
// resolution, and aggregate profit analysis over a set of quotes.
//
// Every function here is pure. Rate tables, policies and quotes are passed in
// explicitly and results are freshly computed values.
package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// Currency is one of the supported currency codes.
// The zero value stands for the accounting currency.
type Currency string

const (
	MGA Currency = "MGA"
	USD Currency = "USD"
	EUR Currency = "EUR"
	CNY Currency = "CNY"
)

// Accounting is the currency every derived amount is expressed in.
const Accounting = MGA

// ErrUnknownCurrency is returned when a code is not part of the supported set.
var ErrUnknownCurrency = errors.New("unknown_currency")

// Currencies returns the supported codes, accounting currency first.
func Currencies() []Currency {
	return []Currency{MGA, USD, EUR, CNY}
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
}

// Valid reports whether c is a supported code.
func (c Currency) Valid() bool {
	switch c {
	case MGA, USD, EUR, CNY:
		return true
	}
	return false
}

// IsAccounting reports whether amounts in c need no conversion.
func (c Currency) IsAccounting() bool {
	return c == "" || c == Accounting
}

func (c Currency) String() string {
	if c == "" {
		return string(Accounting)
	}
	return string(c)
}

// MarshalText implements encoding.TextMarshaler.
func (c Currency) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value decodes
// to the zero Currency.
func (c *Currency) UnmarshalText(b []byte) error {
	if strings.TrimSpace(string(b)) == "" {
		*c = ""
		return nil
	}
	parsed, err := ParseCurrency(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
