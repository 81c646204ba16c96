package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/validation"
)

// RateService resolves the exchange-rate table in force for a user: the
// deployment defaults overlaid with the user's stored rows.
type RateService struct {
	db       *gorm.DB
	defaults pricing.RateTable
}

func NewRateService(db *gorm.DB, defaults pricing.RateTable) *RateService {
	if defaults == nil {
		defaults = pricing.DefaultRates()
	}
	return &RateService{db: db, defaults: defaults}
}

// Defaults returns a copy of the deployment-wide table.
func (s *RateService) Defaults() pricing.RateTable {
	return s.defaults.Merge(nil)
}

// Table returns the rates to use for userID.
func (s *RateService) Table(ctx context.Context, userID uint) (pricing.RateTable, error) {
	var rows []models.ExchangeRate
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}
	return s.defaults.Merge(models.RateTable(rows)), nil
}

// Update stores the given rates for userID. The accounting currency cannot
// be overridden and every rate must be positive.
func (s *RateService) Update(ctx context.Context, userID uint, rates pricing.RateTable) (pricing.RateTable, error) {
	v := validation.Violations{}
	validateRates(rates, v)
	if err := invalid(v); err != nil {
		return nil, err
	}

	rows := make([]models.ExchangeRate, 0, len(rates))
	for c, r := range rates {
		rows = append(rows, models.ExchangeRate{UserID: userID, Currency: c, Rate: r})
	}
	if len(rows) > 0 {
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "currency"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("save rates: %w", err)
		}
	}
	return s.Table(ctx, userID)
}

// validateRates checks user-supplied rates. The accounting currency always
// converts at 1 and cannot be given a rate.
func validateRates(rates pricing.RateTable, v validation.Violations) {
	for c, r := range rates {
		field := "rates." + string(c)
		switch {
		case !c.Valid():
			v.Add(field, "unknown_currency")
		case c.IsAccounting():
			v.Add(field, "accounting_currency")
		default:
			validation.Positive(field, r, v)
		}
	}
}

// Reset drops the user's overrides so the defaults apply again.
func (s *RateService) Reset(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ExchangeRate{}).Error
}

// Conversion is the result of converting one amount.
type Conversion struct {
	Amount    decimal.Decimal  `json:"amount"`
	Currency  pricing.Currency `json:"currency"`
	Rate      decimal.Decimal  `json:"rate"`
	Converted decimal.Decimal  `json:"converted"`
}

// Convert expresses amount, given in c, in the accounting currency using the
// user's table.
func (s *RateService) Convert(ctx context.Context, userID uint, amount decimal.Decimal, c pricing.Currency) (*Conversion, error) {
	table, err := s.Table(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Conversion{
		Amount:    amount,
		Currency:  c,
		Rate:      table.Rate(c),
		Converted: table.Convert(amount, c),
	}, nil
}
