package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the view of a stored quote the analyzer needs. TotalAmount is the
// quote's own recorded revenue figure and is trusted as-is.
type Quote struct {
	ID          uint            `json:"id"`
	Number      string          `json:"number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []LineItem      `json:"items"`
}

// ProfitAnalysis aggregates revenue and cost over a set of quotes.
// Ratios are percentages and are zero when there is no revenue.
type ProfitAnalysis struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	ProfitMargin   decimal.Decimal `json:"profit_margin"`
	CostRatio      decimal.Decimal `json:"cost_ratio"`
	QuotesAnalyzed int             `json:"quotes_analyzed"`
	ItemsAnalyzed  int             `json:"items_analyzed"`
}

// PerformanceMetrics are per-quote averages derived from a ProfitAnalysis.
type PerformanceMetrics struct {
	AverageQuoteValue     decimal.Decimal `json:"average_quote_value"`
	AverageCostPerQuote   decimal.Decimal `json:"average_cost_per_quote"`
	AverageProfitPerQuote decimal.Decimal `json:"average_profit_per_quote"`
	ReturnOnInvestment    decimal.Decimal `json:"return_on_investment"`
	TotalItems            int             `json:"total_items"`
}

// QuotePerformance is the profit picture of a single quote.
type QuotePerformance struct {
	QuoteID      uint            `json:"quote_id"`
	Number       string          `json:"number"`
	CreatedAt    time.Time       `json:"created_at"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	Profit       decimal.Decimal `json:"profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	Items        int             `json:"items"`
}

// percentOf returns part/whole*100, or zero when whole is zero.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// quoteCost sums the margin-free cost of every item of q.
func (p Policy) quoteCost(q Quote, rates RateTable) decimal.Decimal {
	cost := decimal.Zero
	for _, it := range q.Items {
		cost = cost.Add(p.ItemCost(it, rates))
	}
	return cost
}

// Analyze computes the aggregate profit picture of quotes.
func (p Policy) Analyze(quotes []Quote, rates RateTable) ProfitAnalysis {
	var a ProfitAnalysis
	for _, q := range quotes {
		a.TotalRevenue = a.TotalRevenue.Add(q.TotalAmount)
		a.TotalCost = a.TotalCost.Add(p.quoteCost(q, rates))
		a.ItemsAnalyzed += len(q.Items)
	}
	a.QuotesAnalyzed = len(quotes)
	a.NetProfit = a.TotalRevenue.Sub(a.TotalCost)
	a.ProfitMargin = percentOf(a.NetProfit, a.TotalRevenue)
	a.CostRatio = percentOf(a.TotalCost, a.TotalRevenue)
	return a
}

// Analyze runs DefaultPolicy.Analyze.
func Analyze(quotes []Quote, rates RateTable) ProfitAnalysis {
	return DefaultPolicy.Analyze(quotes, rates)
}

// Metrics derives per-quote averages from a.
func Metrics(a ProfitAnalysis) PerformanceMetrics {
	m := PerformanceMetrics{TotalItems: a.ItemsAnalyzed}
	if a.QuotesAnalyzed == 0 {
		return m
	}
	n := decimal.NewFromInt(int64(a.QuotesAnalyzed))
	m.AverageQuoteValue = a.TotalRevenue.Div(n)
	m.AverageCostPerQuote = a.TotalCost.Div(n)
	m.AverageProfitPerQuote = a.NetProfit.Div(n)
	m.ReturnOnInvestment = percentOf(a.NetProfit, a.TotalCost)
	return m
}

// Breakdown returns the performance of each quote, in input order.
func (p Policy) Breakdown(quotes []Quote, rates RateTable) []QuotePerformance {
	out := make([]QuotePerformance, 0, len(quotes))
	for _, q := range quotes {
		cost := p.quoteCost(q, rates)
		profit := q.TotalAmount.Sub(cost)
		out = append(out, QuotePerformance{
			QuoteID:      q.ID,
			Number:       q.Number,
			CreatedAt:    q.CreatedAt,
			Revenue:      q.TotalAmount,
			Cost:         cost,
			Profit:       profit,
			ProfitMargin: percentOf(profit, q.TotalAmount),
			Items:        len(q.Items),
		})
	}
	return out
}
