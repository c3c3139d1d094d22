package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/chitlens/internal/app"
	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/impexp"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/bobmcallan/chitlens/internal/services/analytics"
	"github.com/bobmcallan/chitlens/internal/storage/storetest"
	"github.com/shopspring/decimal"
)

const officeDocument = `{
  "fund": {"name": "Office chit", "chit_value": "100000", "installment_amount": "5000", "start_month": "2024-01", "end_month": "2024-03"},
  "records": [
    {"month": "2024-01", "installment_paid": true, "dividend": "1000"},
    {"month": "2024-02", "installment_paid": true, "dividend": "1200", "prize_money": "25000"}
  ]
}`

func TestFundStoreConformance(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			storetest.Run(t, func(t *testing.T) interfaces.FundStore {
				return testStore(t, backend)
			})
		})
	}
}

func TestImportThenReport(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store interfaces.FundStore) {
		ctx := testContext()
		logger := common.NewSilentLogger()

		doc, err := impexp.DecodeDocument(strings.NewReader(officeDocument))
		require.NoError(t, err)

		fund, imported, skipped, err := app.ImportDocument(ctx, store, logger, doc)
		require.NoError(t, err)
		assert.Equal(t, 2, imported)
		assert.Equal(t, 0, skipped)

		svc := analytics.NewService(store, common.AnalyticsConfig{ReferenceRatePct: 7}, logger)
		report, err := svc.ReportForFund(ctx, fund.ID, nil)
		require.NoError(t, err)

		assert.Equal(t, "17200", report.Summary.NetAmount.String())
		assert.Equal(t, "1100", report.Summary.AverageMonthlyDividend.String())
		require.Len(t, report.Series.Gaps, 1)
		assert.Equal(t, "2024-03", report.Series.Gaps[0].String())
		require.NotNil(t, report.XIRRPct)
		assert.True(t, report.Benchmark.Comparable)
		assert.Equal(t, 7.0, report.Benchmark.ReferenceRatePct)
	})
}

func TestExportMatchesImport(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store interfaces.FundStore) {
		ctx := testContext()

		doc, err := impexp.DecodeDocument(strings.NewReader(officeDocument))
		require.NoError(t, err)
		fund, _, _, err := app.ImportDocument(ctx, store, common.NewSilentLogger(), doc)
		require.NoError(t, err)

		exported, err := app.ExportDocument(ctx, store, fund.ID)
		require.NoError(t, err)
		assert.Equal(t, "Office chit", exported.Fund.Name)
		assert.Equal(t, "2024-03", exported.Fund.EndMonth.String())
		require.Len(t, exported.Records, 2)
		for i, rec := range exported.Records {
			want := doc.Records[i]
			assert.Equal(t, want.Month, rec.Month)
			assert.Equal(t, want.InstallmentPaid, rec.InstallmentPaid)
			assert.True(t, want.Dividend.Equal(rec.Dividend), "dividend %s vs %s", want.Dividend, rec.Dividend)
			assert.True(t, want.PrizeMoney.Equal(rec.PrizeMoney), "prize %s vs %s", want.PrizeMoney, rec.PrizeMoney)
		}
	})
}

func TestDecimalPrecisionSurvivesStorage(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store interfaces.FundStore) {
		ctx := testContext()

		fund := &models.FundConfig{
			Name:              "Precise",
			InstallmentAmount: decimal.RequireFromString("4166.67"),
			StartMonth:        models.MustMonthKey("2024-01"),
			EndMonth:          models.MustMonthKey("2024-12"),
		}
		require.NoError(t, store.SaveFund(ctx, fund))
		require.NoError(t, store.PutRecord(ctx, fund.ID, models.MonthlyRecord{
			Month:           models.MustMonthKey("2024-01"),
			InstallmentPaid: true,
			Dividend:        decimal.RequireFromString("1234.56"),
		}))

		got, err := store.GetFund(ctx, fund.ID)
		require.NoError(t, err)
		assert.Equal(t, "4166.67", got.InstallmentAmount.String())

		records, err := store.ListRecords(ctx, fund.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "1234.56", records[0].Dividend.String())
	})
}

func TestEarlyExitPersists(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store interfaces.FundStore) {
		ctx := testContext()

		exit := models.MustMonthKey("2024-03")
		fund := &models.FundConfig{
			Name:              "Exited",
			InstallmentAmount: decimal.NewFromInt(5000),
			StartMonth:        models.MustMonthKey("2024-01"),
			EndMonth:          models.MustMonthKey("2024-12"),
			EarlyExitMonth:    &exit,
			ExitPayout:        decimal.NewFromInt(12000),
		}
		require.NoError(t, store.SaveFund(ctx, fund))
		for _, m := range []string{"2024-01", "2024-02", "2024-03", "2024-04"} {
			require.NoError(t, store.PutRecord(ctx, fund.ID, models.MonthlyRecord{
				Month:           models.MustMonthKey(m),
				InstallmentPaid: true,
			}))
		}

		svc := analytics.NewService(store, common.AnalyticsConfig{ReferenceRatePct: 7}, common.NewSilentLogger())
		report, err := svc.ReportForFund(ctx, fund.ID, nil)
		require.NoError(t, err)

		require.NotNil(t, report.Fund.EarlyExitMonth)
		assert.Equal(t, "2024-03", report.Fund.EarlyExitMonth.String())
		assert.Equal(t, "2024-03", report.Series.EndMonth.String())
		assert.Equal(t, "15000", report.Summary.TotalPaid.String())
		assert.Equal(t, "12000", report.Summary.TotalReceived.String())
		assert.Empty(t, report.Forecast)
		assert.Equal(t, 0, report.Summary.MonthsToCompletion)
	})
}
