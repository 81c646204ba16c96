package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/diewo77/go-quotes/validation"
)

// QuoteService manages quotes and keeps their derived amounts in step with
// their items.
type QuoteService struct {
	db     *gorm.DB
	rates  *RateService
	policy pricing.Policy
	now    func() time.Time
	log    zerolog.Logger
}

func NewQuoteService(db *gorm.DB, rates *RateService, policy pricing.Policy, log zerolog.Logger) *QuoteService {
	return &QuoteService{
		db:     db,
		rates:  rates,
		policy: policy,
		now:    time.Now,
		log:    log.With().Str("service", "quotes").Logger(),
	}
}

// QuoteFilter narrows List. Zero values match everything.
type QuoteFilter struct {
	Status   models.QuoteStatus
	ClientID uint
	Search   string
	Page
}

// QuoteInput creates a quote.
type QuoteInput struct {
	ClientID    uint               `json:"client_id"`
	Title       string             `json:"title"`
	Notes       string             `json:"notes"`
	ValidUntil  *time.Time         `json:"valid_until"`
	DownPayment decimal.Decimal    `json:"down_payment"`
	Items       []pricing.LineItem `json:"items"`
}

// QuoteUpdate changes quote header fields. Nil fields are left untouched.
// TotalAmount pins the revenue figure; ResetTotal unpins it.
type QuoteUpdate struct {
	ClientID    *uint               `json:"client_id"`
	Title       *string             `json:"title"`
	Notes       *string             `json:"notes"`
	ValidUntil  *time.Time          `json:"valid_until"`
	Status      *models.QuoteStatus `json:"status"`
	DownPayment *decimal.Decimal    `json:"down_payment"`
	TotalAmount *decimal.Decimal    `json:"total_amount"`
	ResetTotal  bool                `json:"reset_total"`
}

func (s *QuoteService) scoped(ctx context.Context, userID uint) *gorm.DB {
	return s.db.WithContext(ctx).Where("quotes.user_id = ?", userID)
}

// List returns one page of the user's quotes, newest first, with the total count.
func (s *QuoteService) List(ctx context.Context, userID uint, f QuoteFilter) ([]models.Quote, int64, error) {
	q := s.scoped(ctx, userID).Model(&models.Quote{})
	if f.Status != "" {
		q = q.Where("quotes.status = ?", f.Status)
	}
	if f.ClientID != 0 {
		q = q.Where("quotes.client_id = ?", f.ClientID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(quotes.number) LIKE ? OR LOWER(quotes.title) LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var quotes []models.Quote
	err := f.Page.apply(q).Preload("Client").Order("quotes.created_at DESC, quotes.id DESC").Find(&quotes).Error
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// Get loads one quote with its client and items in position order.
func (s *QuoteService) Get(ctx context.Context, userID, id uint) (*models.Quote, error) {
	return s.load(s.db.WithContext(ctx), userID, id)
}

func (s *QuoteService) load(tx *gorm.DB, userID, id uint) (*models.Quote, error) {
	var q models.Quote
	err := tx.Where("user_id = ?", userID).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&q, id).Error
	if err != nil {
		return nil, notFound(err, "quote")
	}
	return &q, nil
}

func (s *QuoteService) checkClient(tx *gorm.DB, userID, clientID uint, v validation.Violations) error {
	if clientID == 0 {
		v.Add("client_id", "required")
		return nil
	}
	var n int64
	if err := tx.Model(&models.Client{}).Where("id = ? AND user_id = ?", clientID, userID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		v.Add("client_id", "unknown_client")
	}
	return nil
}

// Create stores a new draft quote with its items priced at the user's
// current rates.
func (s *QuoteService) Create(ctx context.Context, userID uint, in QuoteInput) (*models.Quote, error) {
	v := validateItems(in.Items)
	validation.MaxLength("title", in.Title, 255, v)
	validation.NonNegative("down_payment", in.DownPayment, v)

	rates, err := s.rates.Table(ctx, userID)
	if err != nil {
		return nil, err
	}
	var created *models.Quote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkClient(tx, userID, in.ClientID, v); err != nil {
			return err
		}
		if err := invalid(v); err != nil {
			return err
		}
		now := s.now()
		number, err := models.GenerateQuoteNumber(tx, userID, now.Year())
		if err != nil {
			return fmt.Errorf("quote number: %w", err)
		}
		q := models.Quote{
			UserID:      userID,
			ClientID:    in.ClientID,
			Number:      number,
			Title:       strings.TrimSpace(in.Title),
			Notes:       in.Notes,
			Status:      models.QuoteStatusDraft,
			ValidUntil:  in.ValidUntil,
			DownPayment: in.DownPayment,
		}
		if q.ValidUntil == nil {
			q.ValidUntil = s.defaultValidity(tx, userID, now)
		}
		for _, it := range in.Items {
			q.Items = append(q.Items, models.QuoteItem{CostLine: models.NewCostLine(normalizeItem(it))})
		}
		s.reprice(&q, rates)
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		created = &q
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", userID).Str("number", created.Number).Int("items", len(created.Items)).Msg("Quote created")
	return s.Get(ctx, userID, created.ID)
}

func (s *QuoteService) defaultValidity(tx *gorm.DB, userID uint, now time.Time) *time.Time {
	days := 30
	var settings models.CompanySettings
	if err := tx.Where("user_id = ?", userID).First(&settings).Error; err == nil && settings.QuoteValidityDays > 0 {
		days = settings.QuoteValidityDays
	}
	until := now.AddDate(0, 0, days)
	return &until
}

// reprice re-resolves every item of q and refreshes the quote totals.
func (s *QuoteService) reprice(q *models.Quote, rates pricing.RateTable) {
	resolved, totals := s.policy.ResolveAll(q.LineItems(), rates)
	for i := range q.Items {
		q.Items[i].Apply(resolved[i])
		q.Items[i].Position = i
	}
	q.ApplyTotals(totals)
}

// Update changes header fields of a quote. Status and payment fields may
// change on any quote; the rest only on drafts.
func (s *QuoteService) Update(ctx context.Context, userID, id uint, in QuoteUpdate) (*models.Quote, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.load(tx, userID, id)
		if err != nil {
			return err
		}
		v := validation.Violations{}
		editsContent := in.ClientID != nil || in.Title != nil || in.Notes != nil || in.ValidUntil != nil
		if editsContent && !q.CanEdit() {
			return ErrQuoteLocked
		}
		if in.ClientID != nil {
			if err := s.checkClient(tx, userID, *in.ClientID, v); err != nil {
				return err
			}
			q.ClientID = *in.ClientID
			q.Client = nil
		}
		if in.Title != nil {
			validation.MaxLength("title", *in.Title, 255, v)
			q.Title = strings.TrimSpace(*in.Title)
		}
		if in.Notes != nil {
			q.Notes = *in.Notes
		}
		if in.ValidUntil != nil {
			q.ValidUntil = in.ValidUntil
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				v.Add("status", "invalid_choice")
			}
			q.Status = *in.Status
		}
		if in.DownPayment != nil {
			validation.NonNegative("down_payment", *in.DownPayment, v)
			q.DownPayment = *in.DownPayment
		}
		switch {
		case in.TotalAmount != nil:
			validation.NonNegative("total_amount", *in.TotalAmount, v)
			q.TotalAmount = *in.TotalAmount
			q.TotalOverridden = true
		case in.ResetTotal:
			q.TotalOverridden = false
			q.ApplyTotals(storedTotals(q))
		}
		if err := invalid(v); err != nil {
			return err
		}
		q.RefreshRemaining()
		return tx.Omit(clause.Associations).Save(q).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// storedTotals sums the already-resolved amounts of q's items.
func storedTotals(q *models.Quote) pricing.Totals {
	var t pricing.Totals
	for _, it := range q.Items {
		t.Items++
		t.Quantity += it.Quantity
		t.TotalCost = t.TotalCost.Add(it.TotalCost)
		t.MarginAmount = t.MarginAmount.Add(it.MarginAmount)
		t.SellingPrice = t.SellingPrice.Add(it.LineTotalPrice)
	}
	return t
}

// Delete removes a quote and its items.
func (s *QuoteService) Delete(ctx context.Context, userID, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Quote{}).Where("id = ? AND user_id = ?", id, userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("quote: %w", ErrNotFound)
		}
		if err := tx.Where("quote_id = ?", id).Delete(&models.QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quote{}, id).Error
	})
	if err != nil {
		return err
	}
	s.log.Info().Uint("user_id", userID).Uint("quote_id", id).Msg("Quote deleted")
	return nil
}

// mutateItems runs fn on a locked-for-update draft quote, then re-prices
// every item at current rates and persists the result in one transaction.
func (s *QuoteService) mutateItems(ctx context.Context, userID, id uint, fn func(tx *gorm.DB, q *models.Quote) error) (*models.Quote, error) {
	rates, err := s.rates.Table(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.load(tx, userID, id)
		if err != nil {
			return err
		}
		if !q.CanEdit() {
			return ErrQuoteLocked
		}
		if err := fn(tx, q); err != nil {
			return err
		}
		s.reprice(q, rates)
		for i := range q.Items {
			q.Items[i].QuoteID = q.ID
			if err := tx.Omit(clause.Associations).Save(&q.Items[i]).Error; err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(q).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// AddItem appends a line to a draft quote.
func (s *QuoteService) AddItem(ctx context.Context, userID, quoteID uint, item pricing.LineItem) (*models.Quote, error) {
	if err := invalid(validateItem(item)); err != nil {
		return nil, err
	}
	return s.mutateItems(ctx, userID, quoteID, func(_ *gorm.DB, q *models.Quote) error {
		q.Items = append(q.Items, models.QuoteItem{QuoteID: q.ID, CostLine: models.NewCostLine(normalizeItem(item))})
		return nil
	})
}

// UpdateItem replaces the inputs of one line of a draft quote.
func (s *QuoteService) UpdateItem(ctx context.Context, userID, quoteID, itemID uint, item pricing.LineItem) (*models.Quote, error) {
	if err := invalid(validateItem(item)); err != nil {
		return nil, err
	}
	return s.mutateItems(ctx, userID, quoteID, func(_ *gorm.DB, q *models.Quote) error {
		for i := range q.Items {
			if q.Items[i].ID == itemID {
				q.Items[i].CostLine = models.NewCostLine(normalizeItem(item))
				return nil
			}
		}
		return fmt.Errorf("quote item: %w", ErrNotFound)
	})
}

// RemoveItem deletes one line of a draft quote.
func (s *QuoteService) RemoveItem(ctx context.Context, userID, quoteID, itemID uint) (*models.Quote, error) {
	return s.mutateItems(ctx, userID, quoteID, func(tx *gorm.DB, q *models.Quote) error {
		for i := range q.Items {
			if q.Items[i].ID != itemID {
				continue
			}
			if err := tx.Delete(&models.QuoteItem{}, itemID).Error; err != nil {
				return err
			}
			q.Items = append(q.Items[:i], q.Items[i+1:]...)
			return nil
		}
		return fmt.Errorf("quote item: %w", ErrNotFound)
	})
}

// Recompute re-prices a draft quote at the user's current rates.
func (s *QuoteService) Recompute(ctx context.Context, userID, quoteID uint) (*models.Quote, error) {
	return s.mutateItems(ctx, userID, quoteID, func(*gorm.DB, *models.Quote) error { return nil })
}

// ForAnalysis loads every quote of userID with items, oldest first.
func (s *QuoteService) ForAnalysis(ctx context.Context, userID uint) ([]models.Quote, error) {
	var quotes []models.Quote
	err := s.scoped(ctx, userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Preload("Client").
		Order("created_at ASC, id ASC").
		Find(&quotes).Error
	return quotes, err
}
