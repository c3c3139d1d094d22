// Package interfaces defines service contracts for chitlens
package interfaces

import (
	"context"

	"github.com/bobmcallan/chitlens/internal/models"
)

// AnalyticsService computes fund returns and derived metrics.
type AnalyticsService interface {
	// Analyze builds the cash-flow series of a fund and computes XIRR, summary,
	// forecast and benchmark. referenceRatePct overrides the configured benchmark.
	Analyze(ctx context.Context, fund models.FundConfig, records []models.MonthlyRecord, referenceRatePct *float64) (*models.FundReport, error)

	// ReportForFund loads a stored fund with its records and analyzes it.
	ReportForFund(ctx context.Context, fundID string, referenceRatePct *float64) (*models.FundReport, error)

	// XIRR returns the rate as a fraction and as a percent; both nil when undefined.
	XIRR(ctx context.Context, events []models.CashFlowEvent) (rate, ratePct *float64)

	// Compare compares a fund rate (percent, nil when undefined) to a reference rate.
	Compare(fundRatePct *float64, referenceRatePct float64) (models.BenchmarkResult, error)
}
