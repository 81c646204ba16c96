package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompanySettings is the seller identity printed on quote documents,
// plus the defaults used when drafting new quotes.
type CompanySettings struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Website string `gorm:"size:255" json:"website,omitempty"`

	Address    string `gorm:"size:500" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`

	// Malagasy tax identifiers
	NIF  string `gorm:"size:20" json:"nif,omitempty"`
	STAT string `gorm:"size:30" json:"stat,omitempty"`
	RCS  string `gorm:"size:100" json:"rcs,omitempty"`

	DefaultMarginPercent decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0" json:"default_margin_percent"`
	QuoteValidityDays    int             `gorm:"not null;default:30" json:"quote_validity_days"`
	QuoteFooter          string          `gorm:"type:text" json:"quote_footer,omitempty"`
	LogoURL              string          `gorm:"size:500" json:"logo_url,omitempty"`
}

// GetUserID implements Ownable.
func (c *CompanySettings) GetUserID() uint {
	return c.UserID
}

// FullAddress returns the formatted postal address.
func (c *CompanySettings) FullAddress() string {
	return formatAddress(c.Address, c.PostalCode, c.City, c.Country)
}
