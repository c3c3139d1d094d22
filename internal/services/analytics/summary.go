package analytics

import (
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/shopspring/decimal"
)

// Summarize aggregates the realized cash flow of a series.
//
// ROI is NetAmount / TotalPaid and stays nil when nothing has been paid.
// MonthsToCompletion counts months after the latest recorded month up to and
// including the effective end month.
func Summarize(series *models.CashFlowSeries) models.SummaryMetrics {
	summary := models.SummaryMetrics{
		NetAmount:              decimal.Zero,
		TotalPaid:              decimal.Zero,
		TotalReceived:          decimal.Zero,
		AverageMonthlyDividend: decimal.Zero,
	}
	if series == nil {
		return summary
	}

	for _, ev := range series.Events {
		if ev.Amount.IsNegative() {
			summary.TotalPaid = summary.TotalPaid.Add(ev.Amount.Abs())
		} else {
			summary.TotalReceived = summary.TotalReceived.Add(ev.Amount)
		}
	}
	summary.NetAmount = summary.TotalReceived.Sub(summary.TotalPaid)
	summary.AverageMonthlyDividend = averageDividend(series.Months)
	summary.MonthsToCompletion = monthsToCompletion(series)

	if !summary.TotalPaid.IsZero() {
		roi := summary.NetAmount.Div(summary.TotalPaid).InexactFloat64()
		summary.ROI = &roi
	}
	return summary
}

// averageDividend is the mean dividend over recorded months; zero-dividend months count.
func averageDividend(months []models.MonthFlow) decimal.Decimal {
	if len(months) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m.Dividend)
	}
	return total.Div(decimal.NewFromInt(int64(len(months))))
}

func monthsToCompletion(series *models.CashFlowSeries) int {
	if series.EndMonth.IsZero() {
		return 0
	}
	last, ok := series.LastRecordedMonth()
	if !ok {
		if series.StartMonth.IsZero() {
			return 0
		}
		last = series.StartMonth.AddMonths(-1)
	}
	if n := last.MonthsUntil(series.EndMonth); n > 0 {
		return n
	}
	return 0
}
