package services

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/diewo77/go-quotes/internal/pricing"
)

var (
	grey      = &props.Color{Red: 100, Green: 100, Blue: 100}
	charcoal  = &props.Color{Red: 33, Green: 37, Blue: 41}
	altRow    = &props.Color{Red: 248, Green: 249, Blue: 250}
	summaryBg = &props.Color{Red: 245, Green: 245, Blue: 245}
)

func formatAmount(d decimal.Decimal) string {
	return pricing.FormatMoney(d, pricing.Accounting)
}

// generateQuotePDF lays out a quote on A4. Only selling prices are printed;
// costs and margins stay internal.
func generateQuotePDF(doc *QuoteDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)
	addQuoteHeader(m, doc)
	addQuoteParties(m, doc)
	addQuoteItems(m, doc)
	addQuoteTotals(m, doc)
	addQuoteNotes(m, doc)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate quote PDF: %w", err)
	}
	return out.GetBytes(), nil
}

func addQuoteHeader(m core.Maroto, doc *QuoteDocument) {
	q, cs := doc.Quote, doc.Company
	seller := cs.Name
	if seller == "" {
		seller = "-"
	}
	m.AddRows(
		row.New(10).Add(
			col.New(6).Add(text.New(seller, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Left})),
			col.New(6).Add(text.New("DEVIS", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right, Color: charcoal})),
		),
	)

	contact := joinNonEmpty([]string{strings.ReplaceAll(cs.FullAddress(), "\n", ", "), cs.Email, cs.Phone}, " | ")
	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New(contact, props.Text{Size: 8, Align: align.Left, Color: grey})),
			col.New(4).Add(text.New("N° "+q.Number, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
		),
	)
	ids := joinNonEmpty([]string{prefixed("NIF: ", cs.NIF), prefixed("STAT: ", cs.STAT), prefixed("RCS: ", cs.RCS)}, " | ")
	if ids != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(ids, props.Text{Size: 7, Align: align.Left, Color: grey}))))
	}
	m.AddRows(row.New(3))
}

func addQuoteParties(m core.Maroto, doc *QuoteDocument) {
	q := doc.Quote
	label := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Left, Color: grey}
	rightLabel := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Right, Color: grey}
	value := props.Text{Size: 8, Align: align.Left}
	rightValue := props.Text{Size: 8, Align: align.Right}

	m.AddRows(row.New(6).Add(
		col.New(6).Add(text.New("CLIENT", label)),
		col.New(6).Add(text.New("DÉTAILS", rightLabel)),
	))

	clientName, clientAddr := "", ""
	if q.Client != nil {
		clientName = q.Client.DisplayName()
		clientAddr = strings.ReplaceAll(q.Client.FullAddress(), "\n", ", ")
	}
	validUntil := "-"
	if q.ValidUntil != nil {
		validUntil = q.ValidUntil.Format("02/01/2006")
	}
	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(text.New(clientName, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left})),
			col.New(3).Add(text.New("Date :", rightLabel)),
			col.New(3).Add(text.New(q.CreatedAt.Format("02/01/2006"), rightValue)),
		),
		row.New(7).Add(
			col.New(6).Add(text.New(clientAddr, value)),
			col.New(3).Add(text.New("Valable jusqu'au :", rightLabel)),
			col.New(3).Add(text.New(validUntil, rightValue)),
		),
	)
	if q.Title != "" {
		m.AddRows(row.New(7).Add(col.New(12).Add(text.New("Objet : "+q.Title, value))))
	}
	m.AddRows(row.New(3))
}

func addQuoteItems(m core.Maroto, doc *QuoteDocument) {
	headerText := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Center, Color: &props.Color{Red: 255, Green: 255, Blue: 255}}
	headerLeft := headerText
	headerLeft.Align = align.Left
	headerCell := &props.Cell{BackgroundColor: charcoal}

	m.AddRows(row.New(8).Add(
		col.New(1).Add(text.New("#", headerText)).WithStyle(headerCell),
		col.New(5).Add(text.New("Désignation", headerLeft)).WithStyle(headerCell),
		col.New(2).Add(text.New("Origine", headerText)).WithStyle(headerCell),
		col.New(1).Add(text.New("Qté", headerText)).WithStyle(headerCell),
		col.New(1).Add(text.New("P.U.", headerText)).WithStyle(headerCell),
		col.New(2).Add(text.New("Total", headerText)).WithStyle(headerCell),
	))

	center := props.Text{Size: 7, Align: align.Center}
	left := props.Text{Size: 7, Align: align.Left}
	right := props.Text{Size: 7, Align: align.Right}
	for i, it := range doc.Quote.Items {
		cols := []core.Col{
			col.New(1).Add(text.New(fmt.Sprintf("%d", i+1), center)),
			col.New(5).Add(text.New(it.Description, left)),
			col.New(2).Add(text.New(it.Origin, center)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), right)),
			col.New(1).Add(text.New(formatAmount(it.UnitPrice), right)),
			col.New(2).Add(text.New(formatAmount(it.LineTotalPrice), right)),
		}
		if i%2 == 1 {
			for j := range cols {
				cols[j] = cols[j].WithStyle(&props.Cell{BackgroundColor: altRow})
			}
		}
		m.AddRows(row.New(7).Add(cols...))
	}
	m.AddRows(row.New(2))
}

func addQuoteTotals(m core.Maroto, doc *QuoteDocument) {
	q := doc.Quote
	cell := &props.Cell{BackgroundColor: summaryBg}
	label := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 8, Align: align.Right}
	grand := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	m.AddRows(row.New(8).Add(
		col.New(9).Add(text.New("Total", grand)).WithStyle(cell),
		col.New(3).Add(text.New(formatAmount(q.TotalAmount), grand)).WithStyle(cell),
	))
	if q.DownPayment.IsPositive() {
		m.AddRows(
			row.New(7).Add(
				col.New(9).Add(text.New("Acompte", label)).WithStyle(cell),
				col.New(3).Add(text.New(formatAmount(q.DownPayment), value)).WithStyle(cell),
			),
			row.New(7).Add(
				col.New(9).Add(text.New("Reste à payer", label)).WithStyle(cell),
				col.New(3).Add(text.New(formatAmount(q.RemainingAmount), value)).WithStyle(cell),
			),
		)
	}
	m.AddRows(row.New(4))
}

func addQuoteNotes(m core.Maroto, doc *QuoteDocument) {
	small := props.Text{Size: 7, Align: align.Left, Color: grey}
	if doc.Quote.Notes != "" {
		m.AddRows(row.New(12).Add(col.New(12).Add(text.New(doc.Quote.Notes, props.Text{Size: 8, Align: align.Left}))))
	}
	if doc.Company.QuoteFooter != "" {
		m.AddRows(row.New(10).Add(col.New(12).Add(text.New(doc.Company.QuoteFooter, small))))
	}
}

func joinNonEmpty(parts []string, sep string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func prefixed(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}
