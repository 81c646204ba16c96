package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
)

// AnalyticsService computes profit figures over stored quotes. Revenue is
// each quote's stored total; cost is recomputed from the items at the
// user's current rates.
type AnalyticsService struct {
	db     *gorm.DB
	quotes *QuoteService
	rates  *RateService
	policy pricing.Policy
}

func NewAnalyticsService(db *gorm.DB, quotes *QuoteService, rates *RateService, policy pricing.Policy) *AnalyticsService {
	return &AnalyticsService{db: db, quotes: quotes, rates: rates, policy: policy}
}

// Report is the profit picture of one period compared with the one before.
type Report struct {
	Period         pricing.Period             `json:"period"`
	PreviousPeriod pricing.Period             `json:"previous_period"`
	Analysis       pricing.ProfitAnalysis     `json:"analysis"`
	Metrics        pricing.PerformanceMetrics `json:"metrics"`
	Previous       pricing.ProfitAnalysis     `json:"previous"`
	Trend          pricing.TrendReport        `json:"trend"`
	Quotes         []pricing.QuotePerformance `json:"quotes"`
}

func (s *AnalyticsService) load(ctx context.Context, userID uint) ([]pricing.Quote, pricing.RateTable, error) {
	rates, err := s.rates.Table(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	stored, err := s.quotes.ForAnalysis(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return models.PricingQuotes(stored), rates, nil
}

// Report analyzes the quotes created in period and in the period before it.
func (s *AnalyticsService) Report(ctx context.Context, userID uint, period pricing.Period) (*Report, error) {
	all, rates, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	prevPeriod := period.Previous()
	current := s.policy.FilterByPeriod(all, period)
	previous := s.policy.FilterByPeriod(all, prevPeriod)

	r := &Report{
		Period:         period,
		PreviousPeriod: prevPeriod,
		Analysis:       s.policy.Analyze(current, rates),
		Previous:       s.policy.Analyze(previous, rates),
		Quotes:         s.policy.Breakdown(current, rates),
	}
	r.Metrics = pricing.Metrics(r.Analysis)
	r.Trend = pricing.Trend(r.Analysis, r.Previous)
	return r, nil
}

// Overview is the dashboard summary across all time.
// Outstanding is what accepted quotes still owe after their down payments.
type Overview struct {
	Analysis     pricing.ProfitAnalysis     `json:"analysis"`
	Metrics      pricing.PerformanceMetrics `json:"metrics"`
	Clients      int64                      `json:"clients"`
	Calculations int64                      `json:"calculations"`
	ByStatus     map[models.QuoteStatus]int `json:"by_status"`
	Outstanding  decimal.Decimal            `json:"outstanding"`
	Recent       []pricing.QuotePerformance `json:"recent"`
}

const recentQuotes = 5

func (s *AnalyticsService) Overview(ctx context.Context, userID uint) (*Overview, error) {
	rates, err := s.rates.Table(ctx, userID)
	if err != nil {
		return nil, err
	}
	stored, err := s.quotes.ForAnalysis(ctx, userID)
	if err != nil {
		return nil, err
	}
	all := models.PricingQuotes(stored)
	o := &Overview{
		Analysis: s.policy.Analyze(all, rates),
		ByStatus: map[models.QuoteStatus]int{},
	}
	o.Metrics = pricing.Metrics(o.Analysis)

	o.Outstanding = decimal.Zero
	for _, q := range stored {
		o.ByStatus[q.Status]++
		if q.Status == models.QuoteStatusAccepted {
			o.Outstanding = o.Outstanding.Add(q.RemainingAmount)
		}
	}

	recent := all
	if len(recent) > recentQuotes {
		recent = recent[len(recent)-recentQuotes:]
	}
	o.Recent = s.policy.Breakdown(recent, rates)

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Client{}).Where("user_id = ?", userID).Count(&o.Clients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Calculation{}).Where("user_id = ?", userID).Count(&o.Calculations).Error; err != nil {
		return nil, err
	}
	return o, nil
}
