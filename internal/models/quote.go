package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/go-quotes/internal/pricing"
)

// QuoteStatus represents the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected:
		return true
	}
	return false
}

// Quote is a priced offer to a client. Amounts are in the accounting currency.
type Quote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"index;not null;uniqueIndex:idx_quotes_user_number,priority:1" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Number string `gorm:"size:50;not null;uniqueIndex:idx_quotes_user_number,priority:2" json:"number"`
	Title  string `gorm:"size:255" json:"title,omitempty"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Status     QuoteStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	ValidUntil *time.Time  `json:"valid_until,omitempty"`
	Notes      string      `gorm:"type:text" json:"notes,omitempty"`

	TotalCost    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_cost"`
	MarginAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"margin_amount"`
	// TotalAmount is the revenue figure used by analytics. It follows the
	// items unless TotalOverridden is set.
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_amount"`
	TotalOverridden bool            `gorm:"not null;default:false" json:"total_overridden"`
	DownPayment     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"down_payment"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"remaining_amount"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// GetUserID implements Ownable.
func (q *Quote) GetUserID() uint {
	return q.UserID
}

// IsDraft returns true if the quote is still a draft.
func (q *Quote) IsDraft() bool {
	return q.Status == QuoteStatusDraft
}

// CanEdit returns true if the quote's items can still change.
func (q *Quote) CanEdit() bool {
	return q.IsDraft()
}

// ApplyTotals stores the item totals on q. TotalAmount follows the selling
// price unless it was overridden. RemainingAmount is always refreshed.
func (q *Quote) ApplyTotals(t pricing.Totals) {
	q.TotalCost = t.TotalCost
	q.MarginAmount = t.MarginAmount
	if !q.TotalOverridden {
		q.TotalAmount = t.SellingPrice
	}
	q.RefreshRemaining()
}

// RefreshRemaining recomputes RemainingAmount from TotalAmount and DownPayment.
func (q *Quote) RefreshRemaining() {
	q.RemainingAmount = q.TotalAmount.Sub(q.DownPayment)
}

// LineItems returns the pricing inputs of every item, in position order.
func (q *Quote) LineItems() []pricing.LineItem {
	out := make([]pricing.LineItem, len(q.Items))
	for i, it := range q.Items {
		out[i] = it.LineItem()
	}
	return out
}

// PricingQuote maps q to the analyzer's view of a quote.
func (q *Quote) PricingQuote() pricing.Quote {
	return pricing.Quote{
		ID:          q.ID,
		Number:      q.Number,
		TotalAmount: q.TotalAmount,
		CreatedAt:   q.CreatedAt,
		Items:       q.LineItems(),
	}
}

// QuoteItem is one priced line of a quote.
type QuoteItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	QuoteID uint   `gorm:"index;not null" json:"quote_id"`
	Quote   *Quote `gorm:"foreignKey:QuoteID" json:"-"`

	Position int `gorm:"not null;default:0" json:"position"`

	CostLine `gorm:"embedded"`
}

const quoteNumberPrefix = "DEV"

// GenerateQuoteNumber returns the next number for userID in year.
// Format: DEV-YYYY-NNNN (e.g., DEV-2025-0001). The sequence continues after
// the highest number still stored for that year.
func GenerateQuoteNumber(db *gorm.DB, userID uint, year int) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", quoteNumberPrefix, year)
	var numbers []string
	err := db.Model(&Quote{}).
		Where("user_id = ? AND number LIKE ?", userID, prefix+"%").
		Pluck("number", &numbers).Error
	if err != nil {
		return "", err
	}
	next := 1
	for _, n := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err == nil && seq >= next {
			next = seq + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, next), nil
}

// PricingQuotes maps quotes for the analyzer.
func PricingQuotes(quotes []Quote) []pricing.Quote {
	out := make([]pricing.Quote, len(quotes))
	for i := range quotes {
		out[i] = quotes[i].PricingQuote()
	}
	return out
}
