package pricing

import "github.com/shopspring/decimal"

// TrendReport holds percentage changes between two periods.
type TrendReport struct {
	RevenueTrend decimal.Decimal `json:"revenue_trend"`
	ProfitTrend  decimal.Decimal `json:"profit_trend"`
	QuotesTrend  decimal.Decimal `json:"quotes_trend"`
}

// change is (current-previous)/previous*100, zero when previous is zero.
func change(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}

// Trend compares current against previous.
func Trend(current, previous ProfitAnalysis) TrendReport {
	return TrendReport{
		RevenueTrend: change(current.TotalRevenue, previous.TotalRevenue),
		ProfitTrend:  change(current.NetProfit, previous.NetProfit),
		QuotesTrend: change(
			decimal.NewFromInt(int64(current.QuotesAnalyzed)),
			decimal.NewFromInt(int64(previous.QuotesAnalyzed)),
		),
	}
}
