package pricing

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// log receives fallback diagnostics. Disabled until SetLogger is called.
	log = zerolog.Nop()
)

// SetLogger configures the logger used for rate fallback diagnostics.
func SetLogger(l zerolog.Logger) {
	log = l.With().Str("component", "pricing").Logger()
}

// RateTable maps a currency to the number of accounting-currency units one
// unit of that currency is worth. The accounting currency never needs an entry.
type RateTable map[Currency]decimal.Decimal

// defaultRates is the fallback used when a table lacks a currency.
// Values are MGA per unit of the foreign currency.
var defaultRates = map[Currency]int64{
	USD: 4500,
	EUR: 4900,
	CNY: 620,
}

// DefaultRates returns a fresh copy of the built-in rate table.
func DefaultRates() RateTable {
	t := make(RateTable, len(defaultRates))
	for c, r := range defaultRates {
		t[c] = decimal.NewFromInt(r)
	}
	return t
}

// With returns a copy of t with c set to rate.
func (t RateTable) With(c Currency, rate decimal.Decimal) RateTable {
	out := make(RateTable, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	out[c] = rate
	return out
}

// Merge returns a copy of t overlaid with every entry of o.
func (t RateTable) Merge(o RateTable) RateTable {
	out := make(RateTable, len(t)+len(o))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Validate checks that every entry is a supported currency with a positive rate.
func (t RateTable) Validate() error {
	for c, r := range t {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCurrency, string(c))
		}
		if !r.IsPositive() {
			return fmt.Errorf("rate for %s must be positive, got %s", c, r)
		}
	}
	return nil
}

// Rate returns the rate for c. A missing or non-positive entry falls back to
// the built-in table, and a currency unknown to both converts at 1.
func (t RateTable) Rate(c Currency) decimal.Decimal {
	if c.IsAccounting() {
		return one
	}
	if r, ok := t[c]; ok && r.IsPositive() {
		return r
	}
	if r, ok := defaultRates[c]; ok {
		log.Warn().Str("currency", string(c)).Int64("fallback_rate", r).Msg("Rate missing, using default rate")
		return decimal.NewFromInt(r)
	}
	log.Error().Str("currency", string(c)).Msg("No rate available, converting at 1")
	return one
}

// Convert expresses amount, given in c, in the accounting currency.
func (t RateTable) Convert(amount decimal.Decimal, c Currency) decimal.Decimal {
	if c.IsAccounting() {
		return amount
	}
	return amount.Mul(t.Rate(c))
}

// Convert is the free-function form of RateTable.Convert.
func Convert(amount decimal.Decimal, c Currency, rates RateTable) decimal.Decimal {
	return rates.Convert(amount, c)
}
