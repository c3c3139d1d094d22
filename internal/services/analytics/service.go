package analytics

import (
	"context"
	"fmt"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/models"
)

// Compile-time interface check
var _ interfaces.AnalyticsService = (*Service)(nil)

// Service implements AnalyticsService on top of the pure engine functions.
type Service struct {
	store            interfaces.FundStore
	logger           *common.Logger
	referenceRatePct float64
}

// NewService creates a new analytics service. store may be nil when only
// ad-hoc analysis is needed.
func NewService(store interfaces.FundStore, config common.AnalyticsConfig, logger *common.Logger) *Service {
	return &Service{
		store:            store,
		logger:           logger,
		referenceRatePct: config.ReferenceRatePct,
	}
}

// Analyze runs the full pipeline for one fund.
func (s *Service) Analyze(ctx context.Context, fund models.FundConfig, records []models.MonthlyRecord, referenceRatePct *float64) (*models.FundReport, error) {
	fund.ResolveEndMonth()

	series, err := BuildCashFlowSeries(fund, records)
	if err != nil {
		return nil, err
	}

	ref := s.referenceRatePct
	if referenceRatePct != nil {
		ref = *referenceRatePct
	}

	report := &models.FundReport{
		Fund:     fund,
		Series:   series,
		Summary:  Summarize(series),
		Forecast: ForecastCashFlow(series, fund),
	}

	rate, ratePct := s.XIRR(ctx, series.Events)
	report.XIRR, report.XIRRPct = rate, ratePct

	benchmark, err := CompareToReference(ratePct, ref)
	if err != nil {
		return nil, err
	}
	report.Benchmark = benchmark

	event := s.logger.Debug().
		Str("fund_id", fund.ID).
		Int("events", len(series.Events)).
		Int("gaps", len(series.Gaps)).
		Int("forecast_months", len(report.Forecast))
	if ratePct != nil {
		event = event.Float64("xirr_pct", *ratePct)
	}
	event.Msg("Fund analyzed")

	return report, nil
}

// ReportForFund loads a stored fund and its records, then analyzes it.
func (s *Service) ReportForFund(ctx context.Context, fundID string, referenceRatePct *float64) (*models.FundReport, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no fund store configured")
	}
	fund, err := s.store.GetFund(ctx, fundID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for fund %s: %w", fundID, err)
	}
	return s.Analyze(ctx, *fund, records, referenceRatePct)
}

// XIRR computes the rate for raw events. Both results are nil when undefined.
func (s *Service) XIRR(_ context.Context, events []models.CashFlowEvent) (*float64, *float64) {
	rate, ok := ComputeXIRR(events)
	if !ok {
		s.logger.Debug().Int("events", len(events)).Msg("XIRR not available")
		return nil, nil
	}
	pct := rate * 100
	return &rate, &pct
}

// Compare wraps CompareToReference.
func (s *Service) Compare(fundRatePct *float64, referenceRatePct float64) (models.BenchmarkResult, error) {
	return CompareToReference(fundRatePct, referenceRatePct)
}
