package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertDecimal(t *testing.T, want, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    Currency
		wantErr bool
	}{
		{"USD", USD, false},
		{" eur ", EUR, false},
		{"cny", CNY, false},
		{"MGA", MGA, false},
		{"GBP", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownCurrency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrencyUnmarshalText(t *testing.T) {
	var c Currency
	require.NoError(t, c.UnmarshalText([]byte("usd")))
	assert.Equal(t, USD, c)
	require.NoError(t, c.UnmarshalText([]byte("")))
	assert.Equal(t, Currency(""), c)
	assert.True(t, c.IsAccounting())
	assert.Error(t, c.UnmarshalText([]byte("XYZ")))
}

func TestConvertIdentity(t *testing.T) {
	tables := []RateTable{nil, {}, DefaultRates(), {USD: d(1)}, {EUR: d(-3)}}
	amounts := []decimal.Decimal{d(0), d(1), d(125000), decimal.RequireFromString("12.345")}
	for _, rates := range tables {
		for _, x := range amounts {
			assertDecimal(t, x, Convert(x, Accounting, rates))
			assertDecimal(t, x, rates.Convert(x, ""))
		}
	}
}

func TestConvertLinearity(t *testing.T) {
	rates := RateTable{USD: d(4500), EUR: decimal.RequireFromString("4900.5"), CNY: d(620)}
	pairs := [][2]decimal.Decimal{
		{d(1), d(2)},
		{d(200), d(0)},
		{decimal.RequireFromString("0.1"), decimal.RequireFromString("0.2")},
		{d(123456), d(654321)},
	}
	for _, cur := range Currencies() {
		for _, p := range pairs {
			sum := Convert(p[0].Add(p[1]), cur, rates)
			parts := Convert(p[0], cur, rates).Add(Convert(p[1], cur, rates))
			assertDecimal(t, sum, parts, cur)
		}
	}
}

func TestConvertMissingRateFallsBack(t *testing.T) {
	rates := RateTable{USD: d(4000)}

	assertDecimal(t, d(8000), rates.Convert(d(2), USD))
	// EUR missing: default table applies instead of failing.
	assertDecimal(t, d(9800), rates.Convert(d(2), EUR))
	// non-positive rates are treated as missing
	assertDecimal(t, d(1240), RateTable{CNY: d(0)}.Convert(d(2), CNY))
	// a code unknown to every table still yields a number
	assertDecimal(t, d(7), RateTable{}.Convert(d(7), Currency("XAU")))
}

func TestRateTableWithAndMerge(t *testing.T) {
	base := DefaultRates()
	changed := base.With(USD, d(5000))
	assertDecimal(t, d(4500), base[USD])
	assertDecimal(t, d(5000), changed[USD])

	merged := base.Merge(RateTable{EUR: d(5100)})
	assertDecimal(t, d(5100), merged[EUR])
	assertDecimal(t, d(4900), base[EUR])
}

func TestRateTableValidate(t *testing.T) {
	assert.NoError(t, DefaultRates().Validate())
	assert.Error(t, RateTable{USD: d(0)}.Validate())
	assert.Error(t, RateTable{Currency("GBP"): d(1)}.Validate())
}

func TestResolveScenarioPrimaryOrigin(t *testing.T) {
	item := LineItem{
		Origin:         "China",
		Quantity:       50,
		PurchasePrice:  d(200),
		SourceCurrency: USD,
		TransportFee:   d(125000),
		MiscFee:        d(50000),
		CustomsFee:     d(75000),
		MarginPercent:  d(20),
	}
	r := ResolveItem(item, RateTable{USD: d(4500)})

	assertDecimal(t, d(900000), r.ConvertedPurchasePrice)
	assertDecimal(t, d(45000000), r.TotalPurchaseCost)
	assertDecimal(t, d(125000), r.TransportFee)
	assertDecimal(t, d(45250000), r.TotalCost)
	assertDecimal(t, d(9050000), r.MarginAmount)
	assertDecimal(t, d(54300000), r.LineTotalPrice)
	assertDecimal(t, d(1086000), r.UnitPrice)
}

func TestResolveScenarioForeignTransport(t *testing.T) {
	item := LineItem{
		Origin:            "France",
		Quantity:          20,
		PurchasePrice:     d(120),
		SourceCurrency:    EUR,
		TransportFee:      d(40),
		TransportCurrency: USD,
		MiscFee:           d(25000),
		CustomsFee:        d(45000),
		MarginPercent:     d(25),
	}
	r := ResolveItem(item, RateTable{USD: d(4500), EUR: d(4900)})

	assertDecimal(t, d(180000), r.TransportFee)
	assertDecimal(t, d(11760000), r.TotalPurchaseCost)
	assertDecimal(t, d(12010000), r.TotalCost)
	assertDecimal(t, d(3002500), r.MarginAmount)
	assertDecimal(t, d(15012500), r.LineTotalPrice)
	assertDecimal(t, r.TotalCost.Add(r.MarginAmount), r.LineTotalPrice, "selling price is cost plus margin")
}

func TestTransportFeeOriginPolicy(t *testing.T) {
	rates := RateTable{USD: d(4500)}
	item := LineItem{TransportFee: d(40), TransportCurrency: USD}

	item.Origin = "china"
	assertDecimal(t, d(40), DefaultPolicy.TransportFee(item, rates), "primary origin is case-insensitive")

	item.Origin = "Turkey"
	assertDecimal(t, d(180000), DefaultPolicy.TransportFee(item, rates))

	custom := Policy{PrimaryOrigin: "Turkey"}
	assertDecimal(t, d(40), custom.TransportFee(item, rates))

	var zero Policy
	item.Origin = "China"
	assertDecimal(t, d(40), zero.TransportFee(item, rates), "zero policy falls back to the default origin")
}

func TestResolveEdgeCases(t *testing.T) {
	rates := DefaultRates()

	r := ResolveItem(LineItem{Quantity: 0, PurchasePrice: d(10), SourceCurrency: USD, MiscFee: d(500)}, rates)
	assertDecimal(t, d(500), r.TotalCost)
	assertDecimal(t, decimal.Zero, r.UnitPrice, "zero quantity has no unit price")

	r = ResolveItem(LineItem{Quantity: 1, PurchasePrice: d(1000), MarginPercent: d(-10)}, rates)
	assertDecimal(t, d(-100), r.MarginAmount)
	assertDecimal(t, d(900), r.LineTotalPrice)

	r = ResolveItem(LineItem{Quantity: 3, PurchasePrice: d(1000)}, rates)
	assertDecimal(t, decimal.Zero, r.MarginAmount, "margin defaults to zero")
	assertDecimal(t, d(3000), r.LineTotalPrice)
}

func TestResolveRecomputesOnEveryInput(t *testing.T) {
	rates := RateTable{USD: d(4500), EUR: d(4900)}
	base := LineItem{Origin: "China", Quantity: 2, PurchasePrice: d(10), SourceCurrency: USD, TransportFee: d(100), MiscFee: d(10), CustomsFee: d(20), MarginPercent: d(10)}
	ref := ResolveItem(base, rates)

	mutations := map[string]func(LineItem) LineItem{
		"purchase_price":  func(i LineItem) LineItem { i.PurchasePrice = d(11); return i },
		"source_currency": func(i LineItem) LineItem { i.SourceCurrency = EUR; return i },
		"quantity":        func(i LineItem) LineItem { i.Quantity = 3; return i },
		"transport_fee":   func(i LineItem) LineItem { i.TransportFee = d(101); return i },
		"misc_fee":        func(i LineItem) LineItem { i.MiscFee = d(11); return i },
		"customs_fee":     func(i LineItem) LineItem { i.CustomsFee = d(21); return i },
		"margin_percent":  func(i LineItem) LineItem { i.MarginPercent = d(11); return i },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			got := ResolveItem(mutate(base), rates)
			assert.False(t, ref.LineTotalPrice.Equal(got.LineTotalPrice), "selling price must follow %s", name)
			assertDecimal(t, got.TotalCost.Add(got.MarginAmount), got.LineTotalPrice)
		})
	}
}

func TestCostMonotonicInQuantity(t *testing.T) {
	rates := DefaultRates()
	item := LineItem{Origin: "Japan", PurchasePrice: d(35), SourceCurrency: CNY, TransportFee: d(12), TransportCurrency: EUR, MiscFee: d(1000), MarginPercent: d(15)}
	prev := ResolveItem(item, rates)
	for q := 1; q <= 50; q++ {
		item.Quantity = q
		cur := ResolveItem(item, rates)
		assert.True(t, cur.TotalCost.GreaterThanOrEqual(prev.TotalCost), "quantity %d", q)
		assert.True(t, cur.LineTotalPrice.GreaterThanOrEqual(prev.LineTotalPrice), "quantity %d", q)
		prev = cur
	}
}

func TestResolveAllTotals(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, PurchasePrice: d(100), MarginPercent: d(10)},
		{Quantity: 1, PurchasePrice: d(50)},
	}
	resolved, totals := DefaultPolicy.ResolveAll(items, nil)
	require.Len(t, resolved, 2)
	assert.Equal(t, 2, totals.Items)
	assert.Equal(t, 3, totals.Quantity)
	assertDecimal(t, d(250), totals.TotalCost)
	assertDecimal(t, d(20), totals.MarginAmount)
	assertDecimal(t, d(270), totals.SellingPrice)
}

func TestFilterByPeriod(t *testing.T) {
	quotes := []Quote{
		{ID: 1, CreatedAt: time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)},
		{ID: 2, CreatedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, CreatedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	year, err := NewPeriod(ByYear, 2024, 0)
	require.NoError(t, err)
	got := FilterByPeriod(quotes, year)
	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, uint(2), got[1].ID)

	month, err := NewPeriod(ByMonth, 2024, time.January)
	require.NoError(t, err)
	got = FilterByPeriod(quotes, month)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)

	empty := FilterByPeriod(nil, year)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestFilterByPeriodIgnoresTimestampZone(t *testing.T) {
	tana := time.FixedZone("EAT", 3*3600)
	// 2024-01-31 23:30 UTC is already February in Antananarivo.
	utc := time.Date(2024, time.January, 31, 23, 30, 0, 0, time.UTC)
	quotes := []Quote{
		{ID: 1, CreatedAt: utc},
		{ID: 2, CreatedAt: utc.In(tana)},
		{ID: 3, CreatedAt: utc.In(time.FixedZone("PST", -8*3600))},
	}
	jan, _ := NewPeriod(ByMonth, 2024, time.January)
	feb, _ := NewPeriod(ByMonth, 2024, time.February)

	assert.Len(t, FilterByPeriod(quotes, jan), 3, "same instant lands in the same period")
	assert.Empty(t, FilterByPeriod(quotes, feb))

	pol := Policy{Location: tana}
	assert.Empty(t, pol.FilterByPeriod(quotes, jan))
	assert.Len(t, pol.FilterByPeriod(quotes, feb), 3)
	assert.True(t, feb.ContainsIn(utc, tana))
	assert.False(t, feb.ContainsIn(utc, nil))
}

func TestPeriodValidationAndPrevious(t *testing.T) {
	_, err := NewPeriod(ByMonth, 2024, 13)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = NewPeriod("week", 2024, 1)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	g, err := ParseGranularity("MONTH")
	require.NoError(t, err)
	assert.Equal(t, ByMonth, g)

	jan := Period{Granularity: ByMonth, Year: 2024, Month: time.January}
	assert.Equal(t, Period{Granularity: ByMonth, Year: 2023, Month: time.December}, jan.Previous())
	assert.Equal(t, Period{Granularity: ByMonth, Year: 2024, Month: time.May}, Period{Granularity: ByMonth, Year: 2024, Month: time.June}.Previous())
	assert.Equal(t, Period{Granularity: ByYear, Year: 2023}, Period{Granularity: ByYear, Year: 2024}.Previous())
	assert.Equal(t, "2024-01", jan.String())

	start, end := jan.Bounds(time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), end)
}
