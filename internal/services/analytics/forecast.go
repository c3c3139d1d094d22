package analytics

import (
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/shopspring/decimal"
)

// ForecastCashFlow projects the net payment for every month after the last
// recorded month up to the fund's effective end month, assuming each future
// month pays the installment and receives the historical dividend.
//
// The forecast is empty when nothing has been recorded yet or no months remain.
func ForecastCashFlow(series *models.CashFlowSeries, fund models.FundConfig) []models.ForecastPoint {
	points := []models.ForecastPoint{}
	if series == nil {
		return points
	}
	last, ok := series.LastRecordedMonth()
	if !ok {
		return points
	}

	end := fund.EffectiveEndMonth()
	if end.IsZero() {
		end = series.EndMonth
	}
	if !last.Before(end) {
		return points
	}

	expected := fund.InstallmentAmount.Sub(dividendBasis(series.Months))
	for month := last.Next(); !month.After(end); month = month.Next() {
		points = append(points, models.ForecastPoint{
			Month:               month,
			ExpectedNetCashFlow: expected,
		})
	}
	return points
}

// dividendBasis averages the months that paid a dividend. Zero-dividend months
// only count when no month paid one, which makes the basis zero.
func dividendBasis(months []models.MonthFlow) decimal.Decimal {
	var paying []models.MonthFlow
	for _, m := range months {
		if m.Dividend.IsPositive() {
			paying = append(paying, m)
		}
	}
	return averageDividend(paying)
}
