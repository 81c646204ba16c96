package services

import (
	"strconv"

	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/validation"
)

// validateItem checks the inputs of one line. Margins may be negative
// (selling at a loss); every other amount must be non-negative.
func validateItem(item pricing.LineItem) validation.Violations {
	v := validation.Violations{}
	validation.Required("description", item.Description, v)
	validation.MaxLength("description", item.Description, 500, v)
	validation.NonNegativeInt("quantity", item.Quantity, v)
	validation.NonNegative("purchase_price", item.PurchasePrice, v)
	validation.NonNegative("transport_fee", item.TransportFee, v)
	validation.NonNegative("misc_fee", item.MiscFee, v)
	validation.NonNegative("customs_fee", item.CustomsFee, v)
	if item.SourceCurrency != "" && !item.SourceCurrency.Valid() {
		v.Add("source_currency", "unknown_currency")
	}
	if item.TransportCurrency != "" && !item.TransportCurrency.Valid() {
		v.Add("transport_currency", "unknown_currency")
	}
	return v
}

func validateItems(items []pricing.LineItem) validation.Violations {
	v := validation.Violations{}
	for i, it := range items {
		v.Merge("items."+strconv.Itoa(i)+".", validateItem(it))
	}
	return v
}

// normalizeItem fills the accounting currency where none was given.
func normalizeItem(item pricing.LineItem) pricing.LineItem {
	if item.SourceCurrency == "" {
		item.SourceCurrency = pricing.Accounting
	}
	if item.TransportCurrency == "" {
		item.TransportCurrency = pricing.Accounting
	}
	return item
}
