package pricing

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in c with the currency's grapheme and grouping,
// rounded to the currency's minor unit.
func FormatMoney(amount decimal.Decimal, c Currency) string {
	code := c.String()
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// FormatPercent renders p with two decimals and a percent sign.
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(2) + "%"
}
