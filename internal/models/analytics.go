package models

import "github.com/shopspring/decimal"

// ForecastPoint is the expected net cash flow for a month not yet recorded.
type ForecastPoint struct {
	Month               MonthKey        `json:"month"`
	ExpectedNetCashFlow decimal.Decimal `json:"expected_net_cash_flow"`
}

// SummaryMetrics aggregates the realized cash flow of a fund to date.
type SummaryMetrics struct {
	NetAmount              decimal.Decimal `json:"net_amount"`
	TotalPaid              decimal.Decimal `json:"total_paid"`
	TotalReceived          decimal.Decimal `json:"total_received"`
	AverageMonthlyDividend decimal.Decimal `json:"average_monthly_dividend"`
	MonthsToCompletion     int             `json:"months_to_completion"`
	ROI                    *float64        `json:"roi"` // nil when nothing has been paid
}

// BenchmarkResult compares a fund's XIRR against a reference annual rate.
type BenchmarkResult struct {
	Comparable       bool     `json:"comparable"`
	FundRatePct      *float64 `json:"fund_rate_pct"`
	ReferenceRatePct float64  `json:"reference_rate_pct"`
	Difference       *float64 `json:"difference"`
	IsFundBetter     bool     `json:"is_fund_better"`
}

// FundReport is the full analytics output for one fund.
type FundReport struct {
	Fund      FundConfig      `json:"fund"`
	Series    *CashFlowSeries `json:"series"`
	XIRR      *float64        `json:"xirr"`     // fraction, nil when undefined
	XIRRPct   *float64        `json:"xirr_pct"` // percent, nil when undefined
	Summary   SummaryMetrics  `json:"summary"`
	Forecast  []ForecastPoint `json:"forecast"`
	Benchmark BenchmarkResult `json:"benchmark"`
}
