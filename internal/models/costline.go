package models

import (
	"github.com/shopspring/decimal"

	"github.com/diewo77/go-quotes/internal/pricing"
)

// CostLine is the persisted form of a priced line. The input half mirrors
// pricing.LineItem; the derived half is written only by Apply.
type CostLine struct {
	Description       string           `gorm:"size:500;not null" json:"description"`
	Origin            string           `gorm:"size:100" json:"origin"`
	Quantity          int              `gorm:"not null;default:1" json:"quantity"`
	PurchasePrice     decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"purchase_price"`
	SourceCurrency    pricing.Currency `gorm:"size:3;not null;default:'MGA'" json:"source_currency"`
	TransportFee      decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0" json:"transport_fee"`
	TransportCurrency pricing.Currency `gorm:"size:3;not null;default:'MGA'" json:"transport_currency"`
	MiscFee           decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0" json:"misc_fee"`
	CustomsFee        decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0" json:"customs_fee"`
	MarginPercent     decimal.Decimal  `gorm:"type:decimal(9,4);not null;default:0" json:"margin_percent"`

	ConvertedPurchasePrice decimal.Decimal `gorm:"type:decimal(20,4)" json:"converted_purchase_price"`
	TotalPurchaseCost      decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_purchase_cost"`
	ConvertedTransportFee  decimal.Decimal `gorm:"type:decimal(20,4)" json:"converted_transport_fee"`
	TotalCost              decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_cost"`
	MarginAmount           decimal.Decimal `gorm:"type:decimal(20,4)" json:"margin_amount"`
	LineTotalPrice         decimal.Decimal `gorm:"type:decimal(20,4)" json:"line_total_price"`
	UnitPrice              decimal.Decimal `gorm:"type:decimal(20,4)" json:"unit_price"`
}

// NewCostLine copies the inputs of item.
func NewCostLine(item pricing.LineItem) CostLine {
	return CostLine{
		Description:       item.Description,
		Origin:            item.Origin,
		Quantity:          item.Quantity,
		PurchasePrice:     item.PurchasePrice,
		SourceCurrency:    item.SourceCurrency,
		TransportFee:      item.TransportFee,
		TransportCurrency: item.TransportCurrency,
		MiscFee:           item.MiscFee,
		CustomsFee:        item.CustomsFee,
		MarginPercent:     item.MarginPercent,
	}
}

// LineItem returns the pricing inputs of l.
func (l CostLine) LineItem() pricing.LineItem {
	return pricing.LineItem{
		Description:       l.Description,
		Origin:            l.Origin,
		Quantity:          l.Quantity,
		PurchasePrice:     l.PurchasePrice,
		SourceCurrency:    l.SourceCurrency,
		TransportFee:      l.TransportFee,
		TransportCurrency: l.TransportCurrency,
		MiscFee:           l.MiscFee,
		CustomsFee:        l.CustomsFee,
		MarginPercent:     l.MarginPercent,
	}
}

// Apply stores every derived field of r on l.
func (l *CostLine) Apply(r pricing.Resolved) {
	l.ConvertedPurchasePrice = r.ConvertedPurchasePrice
	l.TotalPurchaseCost = r.TotalPurchaseCost
	l.ConvertedTransportFee = r.TransportFee
	l.TotalCost = r.TotalCost
	l.MarginAmount = r.MarginAmount
	l.LineTotalPrice = r.LineTotalPrice
	l.UnitPrice = r.UnitPrice
}

// Resolve recomputes the derived fields of l under policy and rates.
func (l *CostLine) Resolve(policy pricing.Policy, rates pricing.RateTable) {
	l.Apply(policy.Resolve(l.LineItem(), rates))
}
