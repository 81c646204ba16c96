package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/go-quotes/internal/pricing"
)

// ExchangeRate is a user's override of the accounting-currency value of one
// unit of Currency.
type ExchangeRate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   uint             `gorm:"not null;uniqueIndex:idx_rates_user_currency,priority:1" json:"user_id"`
	Currency pricing.Currency `gorm:"size:3;not null;uniqueIndex:idx_rates_user_currency,priority:2" json:"currency"`
	Rate     decimal.Decimal  `gorm:"type:decimal(20,6);not null" json:"rate"`
}

// RateTable folds rows into a pricing.RateTable.
func RateTable(rows []ExchangeRate) pricing.RateTable {
	t := make(pricing.RateTable, len(rows))
	for _, r := range rows {
		t[r.Currency] = r.Rate
	}
	return t
}
