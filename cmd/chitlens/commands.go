package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/bobmcallan/chitlens/internal/app"
	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/impexp"
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/bobmcallan/chitlens/internal/services/analytics"
	"github.com/google/subcommands"
)

// Output destinations, swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var commands = []subcommands.Command{
	&xirrCmd{},
	&reportCmd{},
	&importCmd{},
	&fundsCmd{},
	&exportCmd{},
	&versionCmd{},
}

func fail(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

// loadConfig reads configuration without opening storage.
func loadConfig(configPath string) (*common.Config, error) {
	return common.LoadConfig(app.ResolveConfigPath(configPath))
}

type xirrCmd struct {
	file string
}

func (*xirrCmd) Name() string     { return "xirr" }
func (*xirrCmd) Synopsis() string { return "compute the annualized XIRR of a dated cash-flow sheet" }
func (*xirrCmd) Usage() string {
	return `chitlens xirr -f <events.csv>

  Reads a CSV sheet of "date,amount" rows (outflows negative) and prints the
  annualized internal rate of return, or n/a when no rate exists.
`
}

func (c *xirrCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "CSV file of date,amount rows (- for stdin)")
}

func (c *xirrCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	r, closeFn, err := openInput(c.file)
	if err != nil {
		return fail("%v", err)
	}
	defer closeFn()

	events, err := impexp.DecodeEventsCSV(r)
	if err != nil {
		return fail("%v", err)
	}

	var pct *float64
	if v, ok := analytics.ComputeXIRRPercent(events); ok {
		pct = &v
	}
	fmt.Fprintf(stdout, "XIRR: %s (%d events)\n", common.FormatPercent(pct), len(events))
	return subcommands.ExitSuccess
}

type reportCmd struct {
	file       string
	configPath string
	reference  string
	currency   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "analyze a fund document without storing it" }
func (*reportCmd) Usage() string {
	return `chitlens report -f <fund.json> [-ref <pct>] [-currency <code>] [-config <path>]

  Builds the cash-flow series for a {fund, records} document and prints its
  XIRR, summary metrics, benchmark comparison and remaining-month forecast.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "fund document (JSON)")
	f.StringVar(&c.configPath, "config", "", "config file (defaults to the usual search path)")
	f.StringVar(&c.reference, "ref", "", "reference annual rate in percent (defaults to config)")
	f.StringVar(&c.currency, "currency", "", "ISO currency code for amounts (defaults to config)")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	config, err := loadConfig(c.configPath)
	if err != nil {
		return fail("%v", err)
	}
	doc, err := impexp.ReadDocumentFile(c.file)
	if err != nil {
		return fail("%v", err)
	}

	var ref *float64
	if c.reference != "" {
		v, err := strconv.ParseFloat(c.reference, 64)
		if err != nil {
			return fail("invalid -ref %q: %v", c.reference, err)
		}
		ref = &v
	}
	currency := config.Analytics.Currency
	if c.currency != "" {
		currency = c.currency
	}

	svc := analytics.NewService(nil, config.Analytics, common.NewSilentLogger())
	report, err := svc.Analyze(ctx, doc.Fund, doc.Records, ref)
	if err != nil {
		return fail("%v", err)
	}
	printReport(stdout, report, currency)
	return subcommands.ExitSuccess
}

// printReport renders a fund report as aligned text.
func printReport(w io.Writer, report *models.FundReport, currency string) {
	fund := report.Fund
	s := report.Summary
	b := report.Benchmark

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Fund:\t%s\n", fund.Name)
	fmt.Fprintf(tw, "Term:\t%s .. %s\n", fund.StartMonth, report.Series.EndMonth)
	fmt.Fprintf(tw, "XIRR:\t%s\n", common.FormatPercent(report.XIRRPct))
	fmt.Fprintf(tw, "Total paid:\t%s\n", common.FormatMoney(s.TotalPaid, currency))
	fmt.Fprintf(tw, "Total received:\t%s\n", common.FormatMoney(s.TotalReceived, currency))
	fmt.Fprintf(tw, "Net:\t%s\n", common.FormatMoney(s.NetAmount, currency))
	fmt.Fprintf(tw, "Avg dividend:\t%s\n", common.FormatMoney(s.AverageMonthlyDividend, currency))
	if s.ROI != nil {
		roi := *s.ROI * 100
		fmt.Fprintf(tw, "ROI:\t%s\n", common.FormatPercent(&roi))
	} else {
		fmt.Fprintf(tw, "ROI:\t%s\n", common.FormatPercent(nil))
	}
	fmt.Fprintf(tw, "Months left:\t%d\n", s.MonthsToCompletion)
	fmt.Fprintf(tw, "Missing months:\t%d\n", len(report.Series.Gaps))

	verdict := "not comparable"
	if b.Comparable {
		verdict = "trails"
		if b.IsFundBetter {
			verdict = "beats"
		}
	}
	fmt.Fprintf(tw, "Benchmark:\t%s %.2f%% reference\n", verdict, b.ReferenceRatePct)
	tw.Flush()

	if len(report.Forecast) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Forecast:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, p := range report.Forecast {
		fmt.Fprintf(tw, "%s\t%s\t\n", p.Month, common.FormatMoney(p.ExpectedNetCashFlow, currency))
	}
	tw.Flush()
}

type importCmd struct {
	file       string
	configPath string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "store a fund document as a new fund" }
func (*importCmd) Usage() string {
	return `chitlens import -f <fund.json> [-config <path>]
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "fund document (JSON)")
	f.StringVar(&c.configPath, "config", "", "config file (defaults to the usual search path)")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := app.NewApp(c.configPath)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	fund, imported, skipped, err := app.ImportFundFile(ctx, a.Store, a.Logger, c.file)
	if err != nil {
		return fail("%v", err)
	}
	fmt.Fprintf(stdout, "Imported fund %s (%s): %d records, %d skipped\n", fund.ID, fund.Name, imported, skipped)
	return subcommands.ExitSuccess
}

type fundsCmd struct {
	configPath string
}

func (*fundsCmd) Name() string     { return "funds" }
func (*fundsCmd) Synopsis() string { return "list stored funds" }
func (*fundsCmd) Usage() string {
	return `chitlens funds [-config <path>]
`
}

func (c *fundsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file (defaults to the usual search path)")
}

func (c *fundsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := app.NewApp(c.configPath)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	funds, err := a.Store.ListFunds(ctx)
	if err != nil {
		return fail("%v", err)
	}
	if len(funds) == 0 {
		fmt.Fprintln(stdout, "No funds stored.")
		return subcommands.ExitSuccess
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTART\tEND\tINSTALLMENT")
	for _, fund := range funds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", fund.ID, fund.Name, fund.StartMonth, fund.EndMonth,
			common.FormatMoney(fund.InstallmentAmount, a.Config.Analytics.Currency))
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

type exportCmd struct {
	id         string
	out        string
	configPath string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write a stored fund and its records as a document" }
func (*exportCmd) Usage() string {
	return `chitlens export -id <fund-id> [-o <fund.json>] [-config <path>]
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "fund ID")
	f.StringVar(&c.out, "o", "", "output file (defaults to stdout)")
	f.StringVar(&c.configPath, "config", "", "config file (defaults to the usual search path)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	a, err := app.NewApp(c.configPath)
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	doc, err := app.ExportDocument(ctx, a.Store, c.id)
	if err != nil {
		return fail("%v", err)
	}

	w := stdout
	if c.out != "" {
		file, err := os.Create(c.out)
		if err != nil {
			return fail("%v", err)
		}
		defer file.Close()
		w = file
	}
	if err := impexp.EncodeDocument(w, doc); err != nil {
		return fail("%v", err)
	}
	return subcommands.ExitSuccess
}

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print version information" }
func (*versionCmd) Usage() string            { return "chitlens version\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFromFile()
	fmt.Fprintf(stdout, "chitlens %s\n", common.GetFullVersion())
	return subcommands.ExitSuccess
}

// openInput opens path for reading, treating "-" as stdin.
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}
