package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/validation"
)

type CompanyService struct {
	db *gorm.DB
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{db: db}
}

// CompanyInput is the editable part of the company settings.
type CompanyInput struct {
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	Phone                string          `json:"phone"`
	Website              string          `json:"website"`
	Address              string          `json:"address"`
	City                 string          `json:"city"`
	PostalCode           string          `json:"postal_code"`
	Country              string          `json:"country"`
	NIF                  string          `json:"nif"`
	STAT                 string          `json:"stat"`
	RCS                  string          `json:"rcs"`
	DefaultMarginPercent decimal.Decimal `json:"default_margin_percent"`
	QuoteValidityDays    int             `json:"quote_validity_days"`
	QuoteFooter          string          `json:"quote_footer"`
	LogoURL              string          `json:"logo_url"`
}

// Get returns the user's settings. A user who never saved any gets an
// unsaved placeholder with defaults.
func (s *CompanyService) Get(ctx context.Context, userID uint) (*models.CompanySettings, error) {
	var cs models.CompanySettings
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&cs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CompanySettings{UserID: userID, QuoteValidityDays: 30}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (s *CompanyService) Save(ctx context.Context, userID uint, in CompanyInput) (*models.CompanySettings, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	validation.NonNegativeInt("quote_validity_days", in.QuoteValidityDays, v)
	validation.MaxLength("nif", in.NIF, 20, v)
	validation.MaxLength("stat", in.STAT, 30, v)
	if err := invalid(v); err != nil {
		return nil, err
	}
	cs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cs.Name = in.Name
	cs.Email = in.Email
	cs.Phone = in.Phone
	cs.Website = in.Website
	cs.Address = in.Address
	cs.City = in.City
	cs.PostalCode = in.PostalCode
	cs.Country = in.Country
	cs.NIF = in.NIF
	cs.STAT = in.STAT
	cs.RCS = in.RCS
	cs.DefaultMarginPercent = in.DefaultMarginPercent
	cs.QuoteValidityDays = in.QuoteValidityDays
	if cs.QuoteValidityDays == 0 {
		cs.QuoteValidityDays = 30
	}
	cs.QuoteFooter = in.QuoteFooter
	cs.LogoURL = in.LogoURL
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}
