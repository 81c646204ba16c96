package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPrimaryOrigin is the sourcing country whose transport fees are
// quoted directly in the accounting currency.
const DefaultPrimaryOrigin = "China"

// LineItem is one priced article of a quote or standalone calculation.
// TransportFee is denominated in the accounting currency when Origin is the
// primary sourcing country, and in TransportCurrency otherwise.
type LineItem struct {
	Description       string          `json:"description"`
	Origin            string          `json:"origin"`
	Quantity          int             `json:"quantity"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	SourceCurrency    Currency        `json:"source_currency"`
	TransportFee      decimal.Decimal `json:"transport_fee"`
	TransportCurrency Currency        `json:"transport_currency"`
	MiscFee           decimal.Decimal `json:"misc_fee"`
	CustomsFee        decimal.Decimal `json:"customs_fee"`
	MarginPercent     decimal.Decimal `json:"margin_percent"`
}

// Resolved holds every amount derived from a LineItem, all in the accounting
// currency. LineTotalPrice covers the whole quantity; UnitPrice is its share
// for a single unit.
type Resolved struct {
	ConvertedPurchasePrice decimal.Decimal `json:"converted_purchase_price"`
	TotalPurchaseCost      decimal.Decimal `json:"total_purchase_cost"`
	TransportFee           decimal.Decimal `json:"transport_fee"`
	TotalCost              decimal.Decimal `json:"total_cost"`
	MarginAmount           decimal.Decimal `json:"margin_amount"`
	LineTotalPrice         decimal.Decimal `json:"line_total_price"`
	UnitPrice              decimal.Decimal `json:"unit_price"`
}

// Policy carries the domain rules that vary per deployment.
// Location is the business calendar used to bucket quotes into periods;
// nil means UTC.
type Policy struct {
	PrimaryOrigin string
	Location      *time.Location
}

// DefaultPolicy uses DefaultPrimaryOrigin.
var DefaultPolicy = Policy{PrimaryOrigin: DefaultPrimaryOrigin}

// IsPrimaryOrigin reports whether origin is the primary sourcing country.
func (p Policy) IsPrimaryOrigin(origin string) bool {
	primary := strings.TrimSpace(p.PrimaryOrigin)
	if primary == "" {
		primary = DefaultPrimaryOrigin
	}
	return strings.EqualFold(strings.TrimSpace(origin), primary)
}

// TransportFee returns the item's transport fee in the accounting currency.
// Only items from outside the primary origin go through conversion.
func (p Policy) TransportFee(item LineItem, rates RateTable) decimal.Decimal {
	if p.IsPrimaryOrigin(item.Origin) {
		return item.TransportFee
	}
	return rates.Convert(item.TransportFee, item.TransportCurrency)
}

// Resolve runs the full cost chain for item:
// conversion, purchase total, cost total, margin, then selling price.
func (p Policy) Resolve(item LineItem, rates RateTable) Resolved {
	var r Resolved
	r.ConvertedPurchasePrice = rates.Convert(item.PurchasePrice, item.SourceCurrency)
	r.TotalPurchaseCost = r.ConvertedPurchasePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	r.TransportFee = p.TransportFee(item, rates)
	r.TotalCost = r.TotalPurchaseCost.Add(r.TransportFee).Add(item.MiscFee).Add(item.CustomsFee)
	r.MarginAmount = r.TotalCost.Mul(item.MarginPercent).Div(hundred)
	r.LineTotalPrice = r.TotalCost.Add(r.MarginAmount)
	if item.Quantity != 0 {
		r.UnitPrice = r.LineTotalPrice.Div(decimal.NewFromInt(int64(item.Quantity)))
	}
	return r
}

// ItemCost is the cost of item excluding margin.
func (p Policy) ItemCost(item LineItem, rates RateTable) decimal.Decimal {
	return p.Resolve(item, rates).TotalCost
}

// ResolveItem resolves item under DefaultPolicy.
func ResolveItem(item LineItem, rates RateTable) Resolved {
	return DefaultPolicy.Resolve(item, rates)
}

// Totals sums a set of resolved items.
type Totals struct {
	Items        int             `json:"items"`
	Quantity     int             `json:"quantity"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	MarginAmount decimal.Decimal `json:"margin_amount"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// ResolveAll resolves every item in order and returns the per-item results
// together with their totals.
func (p Policy) ResolveAll(items []LineItem, rates RateTable) ([]Resolved, Totals) {
	out := make([]Resolved, len(items))
	var t Totals
	for i, it := range items {
		out[i] = p.Resolve(it, rates)
		t.Items++
		t.Quantity += it.Quantity
		t.TotalCost = t.TotalCost.Add(out[i].TotalCost)
		t.MarginAmount = t.MarginAmount.Add(out[i].MarginAmount)
		t.SellingPrice = t.SellingPrice.Add(out[i].LineTotalPrice)
	}
	return out, t
}
