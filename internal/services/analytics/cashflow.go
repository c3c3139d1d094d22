// Package analytics turns chit fund records into cash flows and computes
// XIRR, summary metrics, forecasts and benchmark comparisons.
//
// Every exported function is pure: no I/O, no shared state.
package analytics

import (
	"fmt"
	"sort"

	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/shopspring/decimal"
)

// ValidateFundConfig checks the month range of a fund. Errors wrap ErrInvalidFundConfiguration.
func ValidateFundConfig(fund models.FundConfig) error {
	if fund.StartMonth.IsZero() || fund.EndMonth.IsZero() {
		return fmt.Errorf("%w: start and end month are required", ErrInvalidFundConfiguration)
	}
	if fund.StartMonth.After(fund.EndMonth) {
		return fmt.Errorf("%w: start month %s is after end month %s",
			ErrInvalidFundConfiguration, fund.StartMonth, fund.EndMonth)
	}
	if fund.HasEarlyExit() {
		exit := *fund.EarlyExitMonth
		if exit.Before(fund.StartMonth) || exit.After(fund.EndMonth) {
			return fmt.Errorf("%w: early exit month %s outside %s..%s",
				ErrInvalidFundConfiguration, exit, fund.StartMonth, fund.EndMonth)
		}
	}
	return nil
}

// BuildCashFlowSeries derives the dated cash flows of a fund from its monthly records.
//
// For each month from start to the effective end month, a paid installment
// yields -InstallmentAmount and any dividend or prize money yields one combined
// positive event, both dated to the first of the month. Months without activity
// are reported in Gaps. Records outside the range are ignored; for duplicate
// months the last record wins.
func BuildCashFlowSeries(fund models.FundConfig, records []models.MonthlyRecord) (*models.CashFlowSeries, error) {
	if err := ValidateFundConfig(fund); err != nil {
		return nil, err
	}

	end := fund.EffectiveEndMonth()
	byMonth := make(map[models.MonthKey]models.MonthlyRecord, len(records))
	for _, r := range records {
		byMonth[r.Month] = r
	}

	series := &models.CashFlowSeries{
		Events:            []models.CashFlowEvent{},
		Gaps:              []models.MonthKey{},
		Months:            []models.MonthFlow{},
		InstallmentAmount: fund.InstallmentAmount,
		StartMonth:        fund.StartMonth,
		EndMonth:          end,
	}

	for _, month := range models.MonthRange(fund.StartMonth, end) {
		rec, ok := byMonth[month]
		if !ok || !rec.HasActivity() {
			series.Gaps = append(series.Gaps, month)
			continue
		}

		when := month.FirstDay()
		flow := models.MonthFlow{Month: month, Dividend: positivePart(rec.Dividend), PrizeMoney: positivePart(rec.PrizeMoney)}

		if rec.InstallmentPaid {
			flow.Installment = fund.InstallmentAmount
			series.Events = append(series.Events, models.CashFlowEvent{
				Amount: fund.InstallmentAmount.Neg(),
				When:   when,
			})
		}

		if received := flow.Dividend.Add(flow.PrizeMoney); received.IsPositive() {
			series.Events = append(series.Events, models.CashFlowEvent{
				Amount: received,
				When:   when,
			})
		}

		series.Months = append(series.Months, flow)
	}

	if fund.HasEarlyExit() && fund.ExitPayout.IsPositive() {
		series.Events = append(series.Events, models.CashFlowEvent{
			Amount: fund.ExitPayout,
			When:   end.FirstDay(),
		})
	}

	sort.SliceStable(series.Events, func(i, j int) bool {
		return series.Events[i].When.Before(series.Events[j].When)
	})

	return series, nil
}

// positivePart clamps negative record amounts to zero.
func positivePart(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
