package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/diewo77/go-quotes/internal/pricing"
)

func TestQuotePDF(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.company.Save(ctx, env.user.ID, CompanyInput{
		Name:        "Import SARL",
		NIF:         "4001234567",
		QuoteFooter: "Merci pour votre confiance",
	})
	require.NoError(t, err)
	q := createQuote(t, env, panelItem(), localItem())
	down := dec("1000000")
	_, err = env.quotes.Update(ctx, env.user.ID, q.ID, QuoteUpdate{DownPayment: &down})
	require.NoError(t, err)

	pdf, name, err := env.exports.QuotePDF(ctx, env.user.ID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Number+".pdf", name)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	_, _, err = env.exports.QuotePDF(ctx, env.user.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuotesExcel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := createQuote(t, env, panelItem(), localItem())
	setCreatedAt(t, env.db, first.ID, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	second, err := env.quotes.Create(ctx, env.user.ID, QuoteInput{
		ClientID: env.client.ID,
		Title:    "=HYPERLINK(\"http://evil\")",
		Items:    []pricing.LineItem{localItem()},
	})
	require.NoError(t, err)
	setCreatedAt(t, env.db, second.ID, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))

	out, err := env.exports.QuotesExcel(ctx, env.user.ID, nil)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetQuotes, sheetItems, sheetSummary}, f.GetSheetList())

	header, _ := f.GetCellValue(sheetQuotes, "A1")
	assert.Equal(t, "Number", header)
	rows, err := f.GetRows(sheetQuotes)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, first.Number, rows[1][0])
	assert.Equal(t, "Rakoto SARL", rows[1][2])

	title, _ := f.GetCellValue(sheetQuotes, "E3")
	assert.Equal(t, "'=HYPERLINK(\"http://evil\")", title, "formulas are neutralized")

	items, err := f.GetRows(sheetItems)
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, "Solar panel", items[1][2])

	quotesAnalyzed, _ := f.GetCellValue(sheetSummary, "B2")
	assert.Equal(t, "2", quotesAnalyzed)
	period, _ := f.GetCellValue(sheetSummary, "B1")
	assert.Equal(t, "All time", period)
}

func TestQuotesExcelPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := createQuote(t, env, localItem())
	setCreatedAt(t, env.db, a.ID, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	b := createQuote(t, env, localItem())
	setCreatedAt(t, env.db, b.ID, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))

	p, err := pricing.NewPeriod(pricing.ByMonth, 2024, time.June)
	require.NoError(t, err)
	out, err := env.exports.QuotesExcel(ctx, env.user.ID, &p)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetQuotes)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, a.Number, rows[1][0])
	period, _ := f.GetCellValue(sheetSummary, "B1")
	assert.Equal(t, "2024-06", period)
}

func TestSanitizeExcelCell(t *testing.T) {
	assert.Equal(t, "", sanitizeExcelCell(""))
	assert.Equal(t, "plain", sanitizeExcelCell("plain"))
	assert.Equal(t, "'=1+1", sanitizeExcelCell("=1+1"))
	assert.Equal(t, "'@cmd", sanitizeExcelCell("@cmd"))
}
