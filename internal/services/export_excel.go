package services

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/diewo77/go-quotes/internal/models"
	"github.com/diewo77/go-quotes/internal/pricing"
)

const (
	sheetQuotes  = "Quotes"
	sheetItems   = "Items"
	sheetSummary = "Summary"
)

type excelData struct {
	Period   *pricing.Period
	Quotes   []models.Quote
	Analysis pricing.ProfitAnalysis
	Metrics  pricing.PerformanceMetrics
	Rates    pricing.RateTable
}

type excelStyles struct {
	header, body, money, percent, label int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error
	moneyFmt := "#,##0.00"
	percentFmt := "0.00\"%\""

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	if s.body, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create body style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	}); err != nil {
		return s, fmt.Errorf("create money style: %w", err)
	}
	if s.percent, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &percentFmt,
	}); err != nil {
		return s, fmt.Errorf("create percent style: %w", err)
	}
	if s.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	}); err != nil {
		return s, fmt.Errorf("create label style: %w", err)
	}
	return s, nil
}

// sheetWriter fills a sheet row by row.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) set(col int, v any, style int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	switch x := v.(type) {
	case string:
		v = sanitizeExcelCell(x)
	case decimal.Decimal:
		v = x.InexactFloat64()
	}
	if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
	}
}

func (w *sheetWriter) header(titles []string, style int, widths []float64) {
	for i, t := range titles {
		w.set(i+1, t, style)
		if w.err == nil && i < len(widths) {
			name, _ := excelize.ColumnNumberToName(i + 1)
			w.err = w.f.SetColWidth(w.sheet, name, name, widths[i])
		}
	}
	w.row++
}

// generateQuotesExcel builds a workbook with one row per quote, one row per
// item and a profit summary.
func generateQuotesExcel(data excelData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetQuotes); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	for _, name := range []string{sheetItems, sheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	st, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}

	q := &sheetWriter{f: f, sheet: sheetQuotes, row: 1}
	q.header([]string{"Number", "Date", "Client", "Status", "Title", "Items", "Total cost", "Margin", "Total amount", "Down payment", "Remaining"},
		st.header, []float64{16, 12, 28, 10, 30, 8, 16, 16, 16, 16, 16})
	for _, qt := range data.Quotes {
		client := ""
		if qt.Client != nil {
			client = qt.Client.DisplayName()
		}
		q.set(1, qt.Number, st.body)
		q.set(2, qt.CreatedAt.Format("2006-01-02"), st.body)
		q.set(3, client, st.body)
		q.set(4, string(qt.Status), st.body)
		q.set(5, qt.Title, st.body)
		q.set(6, len(qt.Items), st.body)
		q.set(7, qt.TotalCost, st.money)
		q.set(8, qt.MarginAmount, st.money)
		q.set(9, qt.TotalAmount, st.money)
		q.set(10, qt.DownPayment, st.money)
		q.set(11, qt.RemainingAmount, st.money)
		q.row++
	}
	if q.err != nil {
		return nil, fmt.Errorf("write quotes sheet: %w", q.err)
	}

	it := &sheetWriter{f: f, sheet: sheetItems, row: 1}
	it.header([]string{"Quote", "#", "Description", "Origin", "Qty", "Purchase price", "Currency",
		"Converted price", "Transport", "Misc", "Customs", "Total cost", "Margin %", "Margin", "Line total", "Unit price"},
		st.header, []float64{16, 5, 36, 12, 6, 14, 9, 16, 14, 12, 12, 16, 10, 16, 16, 16})
	for _, qt := range data.Quotes {
		for i, li := range qt.Items {
			it.set(1, qt.Number, st.body)
			it.set(2, i+1, st.body)
			it.set(3, li.Description, st.body)
			it.set(4, li.Origin, st.body)
			it.set(5, li.Quantity, st.body)
			it.set(6, li.PurchasePrice, st.money)
			it.set(7, li.SourceCurrency.String(), st.body)
			it.set(8, li.ConvertedPurchasePrice, st.money)
			it.set(9, li.ConvertedTransportFee, st.money)
			it.set(10, li.MiscFee, st.money)
			it.set(11, li.CustomsFee, st.money)
			it.set(12, li.TotalCost, st.money)
			it.set(13, li.MarginPercent, st.percent)
			it.set(14, li.MarginAmount, st.money)
			it.set(15, li.LineTotalPrice, st.money)
			it.set(16, li.UnitPrice, st.money)
			it.row++
		}
	}
	if it.err != nil {
		return nil, fmt.Errorf("write items sheet: %w", it.err)
	}

	sm := &sheetWriter{f: f, sheet: sheetSummary, row: 1}
	period := "All time"
	if data.Period != nil {
		period = data.Period.String()
	}
	a, m := data.Analysis, data.Metrics
	rows := []struct {
		label string
		value any
		style int
	}{
		{"Period", period, 0},
		{"Quotes analyzed", a.QuotesAnalyzed, 0},
		{"Items analyzed", a.ItemsAnalyzed, 0},
		{"Total revenue", a.TotalRevenue, st.money},
		{"Total cost", a.TotalCost, st.money},
		{"Net profit", a.NetProfit, st.money},
		{"Profit margin", a.ProfitMargin, st.percent},
		{"Cost ratio", a.CostRatio, st.percent},
		{"Average quote value", m.AverageQuoteValue, st.money},
		{"Average profit per quote", m.AverageProfitPerQuote, st.money},
		{"Return on investment", m.ReturnOnInvestment, st.percent},
	}
	for _, r := range rows {
		sm.set(1, r.label, st.label)
		sm.set(2, r.value, r.style)
		sm.row++
	}
	sm.row++
	sm.set(1, "Rates ("+string(pricing.Accounting)+" per unit)", st.label)
	sm.row++
	for _, c := range pricing.Currencies() {
		if c.IsAccounting() {
			continue
		}
		sm.set(1, string(c), 0)
		sm.set(2, data.Rates.Rate(c), st.money)
		sm.row++
	}
	if sm.err == nil {
		sm.err = f.SetColWidth(sheetSummary, "A", "A", 28)
	}
	if sm.err == nil {
		sm.err = f.SetColWidth(sheetSummary, "B", "B", 20)
	}
	if sm.err != nil {
		return nil, fmt.Errorf("write summary sheet: %w", sm.err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
