package services

import (
	"context"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
)

// ExportService renders quotes as PDF documents and spreadsheets.
type ExportService struct {
	quotes  *QuoteService
	company *CompanyService
	rates   *RateService
	policy  pricing.Policy
}

func NewExportService(quotes *QuoteService, company *CompanyService, rates *RateService, policy pricing.Policy) *ExportService {
	return &ExportService{quotes: quotes, company: company, rates: rates, policy: policy}
}

// QuoteDocument is everything printed on a quote.
type QuoteDocument struct {
	Quote   *models.Quote
	Company *models.CompanySettings
}

// Document loads a quote together with the seller identity.
func (s *ExportService) Document(ctx context.Context, userID, quoteID uint) (*QuoteDocument, error) {
	q, err := s.quotes.Get(ctx, userID, quoteID)
	if err != nil {
		return nil, err
	}
	cs, err := s.company.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &QuoteDocument{Quote: q, Company: cs}, nil
}

// QuotePDF renders one quote. The second result is a suggested file name.
func (s *ExportService) QuotePDF(ctx context.Context, userID, quoteID uint) ([]byte, string, error) {
	doc, err := s.Document(ctx, userID, quoteID)
	if err != nil {
		return nil, "", err
	}
	b, err := generateQuotePDF(doc)
	if err != nil {
		return nil, "", err
	}
	return b, doc.Quote.Number + ".pdf", nil
}

// QuotesExcel exports the user's quotes, restricted to period when given.
func (s *ExportService) QuotesExcel(ctx context.Context, userID uint, period *pricing.Period) ([]byte, error) {
	rates, err := s.rates.Table(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.quotes.ForAnalysis(ctx, userID)
	if err != nil {
		return nil, err
	}
	quotes := all
	if period != nil {
		quotes = make([]models.Quote, 0, len(all))
		for _, q := range all {
			if period.ContainsIn(q.CreatedAt, s.policy.Location) {
				quotes = append(quotes, q)
			}
		}
	}
	analysis := s.policy.Analyze(models.PricingQuotes(quotes), rates)
	return generateQuotesExcel(excelData{
		Period:   period,
		Quotes:   quotes,
		Analysis: analysis,
		Metrics:  pricing.Metrics(analysis),
		Rates:    rates,
	})
}
