package analytics

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory FundStore for service tests.
type memStore struct {
	funds   map[string]*models.FundConfig
	records map[string][]models.MonthlyRecord
	listErr error
}

func newMemStore() *memStore {
	return &memStore{
		funds:   make(map[string]*models.FundConfig),
		records: make(map[string][]models.MonthlyRecord),
	}
}

func (m *memStore) SaveFund(_ context.Context, fund *models.FundConfig) error {
	cp := *fund
	m.funds[fund.ID] = &cp
	return nil
}

func (m *memStore) GetFund(_ context.Context, id string) (*models.FundConfig, error) {
	f, ok := m.funds[id]
	if !ok {
		return nil, interfaces.ErrFundNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memStore) ListFunds(_ context.Context) ([]*models.FundConfig, error) {
	out := make([]*models.FundConfig, 0, len(m.funds))
	for _, f := range m.funds {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) DeleteFund(_ context.Context, id string) error {
	delete(m.funds, id)
	delete(m.records, id)
	return nil
}

func (m *memStore) PutRecord(_ context.Context, fundID string, record models.MonthlyRecord) error {
	m.records[fundID] = append(m.records[fundID], record)
	return nil
}

func (m *memStore) ListRecords(_ context.Context, fundID string) ([]models.MonthlyRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records[fundID], nil
}

func (m *memStore) DeleteRecord(_ context.Context, fundID string, month models.MonthKey) error {
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestService(store interfaces.FundStore) *Service {
	return NewService(store, common.AnalyticsConfig{ReferenceRatePct: 7.0, Currency: "INR"}, common.NewSilentLogger())
}

func TestService_Analyze(t *testing.T) {
	svc := newTestService(nil)
	fund := testFund("2024-01", "2024-12")
	var records []models.MonthlyRecord
	for _, m := range models.MonthRange(month("2024-01"), month("2024-11")) {
		records = append(records, models.MonthlyRecord{Month: m, InstallmentPaid: true, Dividend: dec("500")})
	}
	records = append(records, models.MonthlyRecord{Month: month("2024-12"), InstallmentPaid: true, Dividend: dec("500"), PrizeMoney: dec("60000")})

	report, err := svc.Analyze(context.Background(), fund, records, nil)
	require.NoError(t, err)

	require.NotNil(t, report.XIRR)
	require.NotNil(t, report.XIRRPct)
	assert.InDelta(t, *report.XIRR*100, *report.XIRRPct, 1e-9)
	assert.Empty(t, report.Forecast)
	assert.Empty(t, report.Series.Gaps)
	assert.Equal(t, 7.0, report.Benchmark.ReferenceRatePct)
	assert.True(t, report.Benchmark.Comparable)
	assert.Equal(t, *report.XIRRPct > 7.0, report.Benchmark.IsFundBetter)
}

func TestService_AnalyzeReferenceOverride(t *testing.T) {
	svc := newTestService(nil)
	ref := 3.5
	report, err := svc.Analyze(context.Background(), testFund("2024-01", "2024-03"), nil, &ref)
	require.NoError(t, err)
	assert.Nil(t, report.XIRR)
	assert.False(t, report.Benchmark.Comparable)
	assert.Equal(t, 3.5, report.Benchmark.ReferenceRatePct)
}

func TestService_AnalyzeResolvesEndFromTerm(t *testing.T) {
	svc := newTestService(nil)
	fund := models.FundConfig{
		ID:                "fund_term",
		InstallmentAmount: dec("1000"),
		TotalMonths:       10,
		StartMonth:        month("2024-01"),
	}
	report, err := svc.Analyze(context.Background(), fund, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-10", report.Series.EndMonth.String())
	assert.Equal(t, 10, report.Summary.MonthsToCompletion)
}

func TestService_AnalyzeErrors(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Analyze(context.Background(), testFund("2024-05", "2024-01"), nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidFundConfiguration))

	bad := -1.0
	_, err = svc.Analyze(context.Background(), testFund("2024-01", "2024-05"), nil, &bad)
	assert.True(t, errors.Is(err, ErrInvalidReferenceRate))
}

func TestService_ReportForFund(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	fund := testFund("2024-01", "2024-03")
	require.NoError(t, store.SaveFund(ctx, &fund))
	require.NoError(t, store.PutRecord(ctx, fund.ID, models.MonthlyRecord{Month: month("2024-01"), InstallmentPaid: true, Dividend: dec("1000")}))
	require.NoError(t, store.PutRecord(ctx, fund.ID, models.MonthlyRecord{Month: month("2024-02"), InstallmentPaid: true, Dividend: dec("1200"), PrizeMoney: dec("25000")}))

	svc := newTestService(store)
	report, err := svc.ReportForFund(ctx, fund.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, fund.ID, report.Fund.ID)
	assert.True(t, dec("17200").Equal(report.Summary.NetAmount))
	require.Len(t, report.Forecast, 1)
	assert.Equal(t, "2024-03", report.Forecast[0].Month.String())
}

func TestService_ReportForFundErrors(t *testing.T) {
	ctx := context.Background()

	_, err := newTestService(nil).ReportForFund(ctx, "fund_x", nil)
	assert.Error(t, err)

	store := newMemStore()
	_, err = newTestService(store).ReportForFund(ctx, "fund_missing", nil)
	assert.True(t, errors.Is(err, interfaces.ErrFundNotFound))

	fund := testFund("2024-01", "2024-03")
	require.NoError(t, store.SaveFund(ctx, &fund))
	store.listErr = errors.New("disk on fire")
	_, err = newTestService(store).ReportForFund(ctx, fund.ID, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load records")
}

func TestService_XIRR(t *testing.T) {
	svc := newTestService(nil)
	rate, pct := svc.XIRR(context.Background(), []models.CashFlowEvent{
		ev(-1000, day(2023, 1, 1)),
		ev(1100, day(2024, 1, 1)),
	})
	require.NotNil(t, rate)
	require.NotNil(t, pct)
	assert.InDelta(t, 10.0, *pct, 0.01)

	rate, pct = svc.XIRR(context.Background(), nil)
	assert.Nil(t, rate)
	assert.Nil(t, pct)
}
