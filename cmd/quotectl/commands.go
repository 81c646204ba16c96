package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/diewo77/go-quotes/internal/backup"
	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/db"
	"github.com/diewo77/go-quotes/internal/pricing"
)

func commands(out io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&migrateCmd{out: out, open: openEnv},
		&calcCmd{out: out, cfg: config.Load},
		&analyzeCmd{out: out, open: openEnv},
		&backupCmd{out: out, open: openEnv},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ---- migrate ----

type migrateCmd struct {
	out  io.Writer
	open opener
	sql  bool
	seed bool
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "bring the database schema up to date" }
func (*migrateCmd) Usage() string {
	return `quotectl migrate [-sql] [-seed]

  Applies the schema. With -sql, postgres databases use the embedded SQL
  migrations instead of AutoMigrate.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.sql, "sql", false, "use SQL migrations (postgres only)")
	f.BoolVar(&c.seed, "seed", false, "create the demo account afterwards")
}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exitStatus(os.Stderr, c.run(ctx))
}

func (c *migrateCmd) run(ctx context.Context) error {
	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	if c.sql {
		e.cfg.App.Migrations = true
	}
	if err := db.Setup(e.db, e.cfg, e.log); err != nil {
		return err
	}
	if c.seed {
		if err := db.Seed(e.db, e.log); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.out, "Schema is up to date")
	return nil
}

// ---- calc ----

// rateFlag collects repeated -rate CODE=VALUE overrides.
type rateFlag struct {
	table pricing.RateTable
}

func (r *rateFlag) String() string {
	if r == nil || len(r.table) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.table))
	for c, v := range r.table {
		parts = append(parts, fmt.Sprintf("%s=%s", c, v))
	}
	return strings.Join(parts, ",")
}

func (r *rateFlag) Set(s string) error {
	code, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected CODE=VALUE, got %q", s)
	}
	c, err := pricing.ParseCurrency(code)
	if err != nil {
		return err
	}
	if c.IsAccounting() {
		return fmt.Errorf("%s is the accounting currency and always converts at 1", c)
	}
	v, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || !v.IsPositive() {
		return fmt.Errorf("rate for %s must be a positive number", c)
	}
	if r.table == nil {
		r.table = pricing.RateTable{}
	}
	r.table[c] = v
	return nil
}

// decimalFlag parses a decimal.Decimal flag.
type decimalFlag struct{ v *decimal.Decimal }

func (d decimalFlag) String() string {
	if d.v == nil {
		return "0"
	}
	return d.v.String()
}

func (d decimalFlag) Set(s string) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*d.v = v
	return nil
}

type currencyFlag struct{ c *pricing.Currency }

func (f currencyFlag) String() string {
	if f.c == nil {
		return ""
	}
	return f.c.String()
}

func (f currencyFlag) Set(s string) error {
	c, err := pricing.ParseCurrency(s)
	if err != nil {
		return err
	}
	*f.c = c
	return nil
}

type calcCmd struct {
	out   io.Writer
	cfg   func() *config.Config
	item  pricing.LineItem
	rates rateFlag
	json  bool
}

func (*calcCmd) Name() string     { return "calc" }
func (*calcCmd) Synopsis() string { return "price one line item" }
func (*calcCmd) Usage() string {
	return `quotectl calc -desc <text> -price <amount> [-currency USD] [-qty n] [-origin China]
              [-transport <fee>] [-transport-currency EUR] [-misc <fee>] [-customs <fee>]
              [-margin <percent>] [-rate USD=4600]... [-json]

  Resolves the cost, margin and selling price of a single item using the
  configured exchange rates, optionally overridden with -rate.
`
}

func (c *calcCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.item.Description, "desc", "", "item description")
	f.StringVar(&c.item.Origin, "origin", "", "sourcing country")
	f.IntVar(&c.item.Quantity, "qty", 1, "quantity")
	f.Var(decimalFlag{&c.item.PurchasePrice}, "price", "unit purchase price")
	f.Var(currencyFlag{&c.item.SourceCurrency}, "currency", "purchase currency (MGA, USD, EUR, CNY)")
	f.Var(decimalFlag{&c.item.TransportFee}, "transport", "transport fee")
	f.Var(currencyFlag{&c.item.TransportCurrency}, "transport-currency", "transport fee currency")
	f.Var(decimalFlag{&c.item.MiscFee}, "misc", "miscellaneous fees, in MGA")
	f.Var(decimalFlag{&c.item.CustomsFee}, "customs", "customs fees, in MGA")
	f.Var(decimalFlag{&c.item.MarginPercent}, "margin", "margin percent")
	f.Var(&c.rates, "rate", "override one exchange rate, CODE=VALUE (repeatable)")
	f.BoolVar(&c.json, "json", false, "print JSON")
}

type calcResult struct {
	Item     pricing.LineItem  `json:"item"`
	Resolved pricing.Resolved  `json:"resolved"`
	Rates    pricing.RateTable `json:"rates"`
}

func (c *calcCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exitStatus(os.Stderr, c.run())
}

func (c *calcCmd) run() error {
	if strings.TrimSpace(c.item.Description) == "" {
		return fmt.Errorf("%w: -desc is required", errUsage)
	}
	if c.item.Quantity < 0 || c.item.PurchasePrice.IsNegative() {
		return fmt.Errorf("%w: quantity and price must not be negative", errUsage)
	}
	cfg := c.cfg()
	rates := cfg.Pricing.Rates.Merge(c.rates.table)
	policy := cfg.Pricing.Policy()
	res := calcResult{Item: c.item, Resolved: policy.Resolve(c.item, rates), Rates: rates}
	if c.json {
		return writeJSON(c.out, res)
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	money := func(d decimal.Decimal) string { return pricing.FormatMoney(d, pricing.Accounting) }
	r := res.Resolved
	fmt.Fprintf(tw, "Item\t%s x %d\n", c.item.Description, c.item.Quantity)
	fmt.Fprintf(tw, "Unit purchase price\t%s\n", money(r.ConvertedPurchasePrice))
	fmt.Fprintf(tw, "Total purchase cost\t%s\n", money(r.TotalPurchaseCost))
	fmt.Fprintf(tw, "Transport\t%s\n", money(r.TransportFee))
	fmt.Fprintf(tw, "Total cost\t%s\n", money(r.TotalCost))
	fmt.Fprintf(tw, "Margin\t%s (%s)\n", money(r.MarginAmount), pricing.FormatPercent(c.item.MarginPercent))
	fmt.Fprintf(tw, "Selling price\t%s\n", money(r.LineTotalPrice))
	fmt.Fprintf(tw, "Unit price\t%s\n", money(r.UnitPrice))
	return tw.Flush()
}

// ---- analyze ----

type analyzeCmd struct {
	out         io.Writer
	open        opener
	user        string
	granularity string
	year        int
	month       int
	json        bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "profit analysis of a user's quotes for a period" }
func (*analyzeCmd) Usage() string {
	return `quotectl analyze -user <id|email> [-granularity month|year] [-year YYYY] [-month M] [-json]

  Prints revenue, cost and profit for the period and the change from the
  period before. Defaults to the current month.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	now := time.Now()
	f.StringVar(&c.user, "user", "", "user id or email")
	f.StringVar(&c.granularity, "granularity", string(pricing.ByMonth), "month or year")
	f.IntVar(&c.year, "year", now.Year(), "year")
	f.IntVar(&c.month, "month", int(now.Month()), "month (1-12), ignored for yearly reports")
	f.BoolVar(&c.json, "json", false, "print JSON")
}

func (c *analyzeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exitStatus(os.Stderr, c.run(ctx))
}

func (c *analyzeCmd) run(ctx context.Context) error {
	g, err := pricing.ParseGranularity(c.granularity)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	period, err := pricing.NewPeriod(g, c.year, time.Month(c.month))
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	u, err := e.findUser(ctx, c.user)
	if err != nil {
		return err
	}
	rep, err := e.svc.Analytics.Report(ctx, u.ID, period)
	if err != nil {
		return err
	}
	if c.json {
		return writeJSON(c.out, rep)
	}

	money := func(d decimal.Decimal) string { return pricing.FormatMoney(d, pricing.Accounting) }
	a := rep.Analysis
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period\t%s (previous %s)\n", rep.Period, rep.PreviousPeriod)
	fmt.Fprintf(tw, "Quotes\t%d (%s)\n", a.QuotesAnalyzed, pricing.FormatPercent(rep.Trend.QuotesTrend))
	fmt.Fprintf(tw, "Items\t%d\n", a.ItemsAnalyzed)
	fmt.Fprintf(tw, "Revenue\t%s (%s)\n", money(a.TotalRevenue), pricing.FormatPercent(rep.Trend.RevenueTrend))
	fmt.Fprintf(tw, "Cost\t%s\n", money(a.TotalCost))
	fmt.Fprintf(tw, "Net profit\t%s (%s)\n", money(a.NetProfit), pricing.FormatPercent(rep.Trend.ProfitTrend))
	fmt.Fprintf(tw, "Profit margin\t%s\n", pricing.FormatPercent(a.ProfitMargin))
	fmt.Fprintf(tw, "Cost ratio\t%s\n", pricing.FormatPercent(a.CostRatio))
	fmt.Fprintf(tw, "Average quote\t%s\n", money(rep.Metrics.AverageQuoteValue))
	fmt.Fprintf(tw, "ROI\t%s\n", pricing.FormatPercent(rep.Metrics.ReturnOnInvestment))
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(rep.Quotes) == 0 {
		return nil
	}
	fmt.Fprintln(c.out)
	tw = tabwriter.NewWriter(c.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Quote\tRevenue\tCost\tProfit\tMargin\t")
	for _, q := range rep.Quotes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", q.Number, money(q.Revenue), money(q.Cost), money(q.Profit), pricing.FormatPercent(q.ProfitMargin))
	}
	return tw.Flush()
}

// ---- backup ----

type backupCmd struct {
	out  io.Writer
	open opener
	user string
	all  bool
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "snapshot one user's data, or everyone's" }
func (*backupCmd) Usage() string {
	return `quotectl backup (-user <id|email> | -all)

  Writes a snapshot to the configured backup store (BACKUP_DIR or
  BACKUP_S3_BUCKET) and applies the retention policy.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "user id or email")
	f.BoolVar(&c.all, "all", false, "back up every user")
}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return exitStatus(os.Stderr, c.run(ctx))
}

func (c *backupCmd) run(ctx context.Context) error {
	if c.all == (c.user != "") {
		return fmt.Errorf("%w: pass exactly one of -user or -all", errUsage)
	}
	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()
	if e.svc.Backups == nil {
		store, format, err := backup.Open(ctx, e.cfg.Backup)
		if err != nil {
			return err
		}
		e.svc.EnableBackups(store, format, e.cfg.Backup.Keep)
	}

	if c.all {
		if err := e.svc.Backups.CreateAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Backed up all users")
		return nil
	}
	u, err := e.findUser(ctx, c.user)
	if err != nil {
		return err
	}
	b, err := e.svc.Backups.Create(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Backup %s: %d clients, %d quotes, %d calculations, %d bytes\n",
		b.ID, b.Clients, b.Quotes, b.Calculations, b.Size)
	return nil
}
