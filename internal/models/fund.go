package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundConfig describes one chit fund membership.
type FundConfig struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	ChitValue         decimal.Decimal `json:"chit_value"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	TotalMonths       int             `json:"total_months"`
	StartMonth        MonthKey        `json:"start_month"`
	EndMonth          MonthKey        `json:"end_month"`
	EarlyExitMonth    *MonthKey       `json:"early_exit_month,omitempty"`
	ExitPayout        decimal.Decimal `json:"exit_payout"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// EffectiveEndMonth is the early-exit month when set, otherwise the nominal end month.
func (f FundConfig) EffectiveEndMonth() MonthKey {
	if f.EarlyExitMonth != nil && !f.EarlyExitMonth.IsZero() {
		return *f.EarlyExitMonth
	}
	return f.EndMonth
}

// HasEarlyExit reports whether the investor left before the nominal end month.
func (f FundConfig) HasEarlyExit() bool {
	return f.EarlyExitMonth != nil && !f.EarlyExitMonth.IsZero()
}

// ResolveEndMonth fills EndMonth from StartMonth and TotalMonths when only the duration is known.
func (f *FundConfig) ResolveEndMonth() {
	if f.EndMonth.IsZero() && !f.StartMonth.IsZero() && f.TotalMonths > 0 {
		f.EndMonth = f.StartMonth.AddMonths(f.TotalMonths - 1)
	}
	if f.TotalMonths == 0 && !f.StartMonth.IsZero() && !f.EndMonth.IsZero() {
		if n := f.StartMonth.MonthsUntil(f.EndMonth) + 1; n > 0 {
			f.TotalMonths = n
		}
	}
}

// MonthlyRecord is what the member recorded for one month of the fund.
type MonthlyRecord struct {
	Month           MonthKey        `json:"month"`
	InstallmentPaid bool            `json:"installment_paid"`
	Dividend        decimal.Decimal `json:"dividend"`
	PrizeMoney      decimal.Decimal `json:"prize_money"`
	Notes           string          `json:"notes,omitempty"`
}

// HasActivity reports whether anything was paid or received in the month.
func (r MonthlyRecord) HasActivity() bool {
	return r.InstallmentPaid || r.Dividend.IsPositive() || r.PrizeMoney.IsPositive()
}
