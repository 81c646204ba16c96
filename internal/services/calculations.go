package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/validation"
)

// CalculationService runs cost simulations outside of any quote and keeps
// named snapshots of them.
type CalculationService struct {
	db     *gorm.DB
	rates  *RateService
	quotes *QuoteService
	policy pricing.Policy
}

func NewCalculationService(db *gorm.DB, rates *RateService, quotes *QuoteService, policy pricing.Policy) *CalculationService {
	return &CalculationService{db: db, rates: rates, quotes: quotes, policy: policy}
}

// PreviewLine pairs an input with its resolution.
type PreviewLine struct {
	Input    pricing.LineItem `json:"input"`
	Resolved pricing.Resolved `json:"resolved"`
}

// Preview is an unsaved calculation.
type Preview struct {
	Lines  []PreviewLine     `json:"lines"`
	Totals pricing.Totals    `json:"totals"`
	Rates  pricing.RateTable `json:"rates"`
}

// CalculationInput saves a calculation.
type CalculationInput struct {
	Name  string             `json:"name"`
	Notes string             `json:"notes"`
	Items []pricing.LineItem `json:"items"`
}

// Preview resolves items at the user's current rates without storing anything.
// Rates given in override replace the stored ones for this call only.
func (s *CalculationService) Preview(ctx context.Context, userID uint, items []pricing.LineItem, override pricing.RateTable) (*Preview, error) {
	v := validateItems(items)
	validateRates(override, v)
	if err := invalid(v); err != nil {
		return nil, err
	}
	rates, err := s.rates.Table(ctx, userID)
	if err != nil {
		return nil, err
	}
	rates = rates.Merge(override)

	normalized := make([]pricing.LineItem, len(items))
	for i, it := range items {
		normalized[i] = normalizeItem(it)
	}
	resolved, totals := s.policy.ResolveAll(normalized, rates)
	p := &Preview{Lines: make([]PreviewLine, len(items)), Totals: totals, Rates: rates}
	for i := range normalized {
		p.Lines[i] = PreviewLine{Input: normalized[i], Resolved: resolved[i]}
	}
	return p, nil
}

func (s *CalculationService) Save(ctx context.Context, userID uint, in CalculationInput) (*models.Calculation, error) {
	v := validateItems(in.Items)
	validation.Required("name", in.Name, v)
	validation.MaxLength("name", in.Name, 255, v)
	if len(in.Items) == 0 {
		v.Add("items", "required")
	}
	if err := invalid(v); err != nil {
		return nil, err
	}
	rates, err := s.rates.Table(ctx, userID)
	if err != nil {
		return nil, err
	}
	calc := models.Calculation{UserID: userID, Name: strings.TrimSpace(in.Name), Notes: in.Notes}
	items := make([]pricing.LineItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = normalizeItem(it)
	}
	resolved, totals := s.policy.ResolveAll(items, rates)
	for i, it := range items {
		line := models.NewCostLine(it)
		line.Apply(resolved[i])
		calc.Items = append(calc.Items, models.CalculationItem{Position: i, CostLine: line})
	}
	calc.ApplyTotals(totals)
	if err := s.db.WithContext(ctx).Create(&calc).Error; err != nil {
		return nil, err
	}
	return &calc, nil
}

func (s *CalculationService) List(ctx context.Context, userID uint, p Page) ([]models.Calculation, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Calculation{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var calcs []models.Calculation
	if err := p.apply(q).Order("created_at DESC, id DESC").Find(&calcs).Error; err != nil {
		return nil, 0, err
	}
	return calcs, total, nil
}

func (s *CalculationService) Get(ctx context.Context, userID, id uint) (*models.Calculation, error) {
	var calc models.Calculation
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&calc, id).Error
	if err != nil {
		return nil, notFound(err, "calculation")
	}
	return &calc, nil
}

func (s *CalculationService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var calc models.Calculation
		if err := tx.Where("user_id = ?", userID).First(&calc, id).Error; err != nil {
			return notFound(err, "calculation")
		}
		if err := tx.Where("calculation_id = ?", id).Delete(&models.CalculationItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&calc).Error
	})
}

// ToQuote drafts a quote for clientID from a saved calculation. Items are
// re-priced at the rates in force now.
func (s *CalculationService) ToQuote(ctx context.Context, userID, calcID, clientID uint) (*models.Quote, error) {
	calc, err := s.Get(ctx, userID, calcID)
	if err != nil {
		return nil, err
	}
	in := QuoteInput{ClientID: clientID, Title: calc.Name, Notes: calc.Notes}
	for _, it := range calc.Items {
		in.Items = append(in.Items, it.LineItem())
	}
	q, err := s.quotes.Create(ctx, userID, in)
	if err != nil {
		return nil, fmt.Errorf("calculation %d to quote: %w", calcID, err)
	}
	return q, nil
}
