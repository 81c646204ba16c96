package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/go-quotes/internal/pricing"
)

// Calculation is a saved cost simulation, independent of any quote.
type Calculation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Notes string `gorm:"type:text" json:"notes,omitempty"`

	TotalCost    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_cost"`
	MarginAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"margin_amount"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"selling_price"`

	Items []CalculationItem `gorm:"foreignKey:CalculationID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// GetUserID implements Ownable.
func (c *Calculation) GetUserID() uint {
	return c.UserID
}

// ApplyTotals stores the summed totals on c.
func (c *Calculation) ApplyTotals(t pricing.Totals) {
	c.TotalCost = t.TotalCost
	c.MarginAmount = t.MarginAmount
	c.SellingPrice = t.SellingPrice
}

// CalculationItem is one line of a saved calculation.
type CalculationItem struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	CalculationID uint `gorm:"index;not null" json:"calculation_id"`
	Position      int  `gorm:"not null;default:0" json:"position"`

	CostLine `gorm:"embedded"`
}
