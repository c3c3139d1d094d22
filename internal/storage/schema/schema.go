// Package schema holds the flat document shapes shared by the fund store backends.
package schema

import (
	"fmt"
	"time"

	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Table names used by every backend.
const (
	FundTable   = "fund"
	RecordTable = "fund_record"
)

// FundDoc is a FundConfig flattened to strings, ready for any backend.
type FundDoc struct {
	FundID            string    `json:"fund_id"`
	Name              string    `json:"name"`
	ChitValue         string    `json:"chit_value"`
	InstallmentAmount string    `json:"installment_amount"`
	TotalMonths       int       `json:"total_months"`
	StartMonth        string    `json:"start_month"`
	EndMonth          string    `json:"end_month"`
	EarlyExitMonth    string    `json:"early_exit_month"`
	ExitPayout        string    `json:"exit_payout"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// RecordDoc is a MonthlyRecord flattened for storage.
type RecordDoc struct {
	FundID          string `json:"fund_id"`
	Month           string `json:"month"`
	InstallmentPaid bool   `json:"installment_paid"`
	Dividend        string `json:"dividend"`
	PrizeMoney      string `json:"prize_money"`
	Notes           string `json:"notes"`
}

// NewFundID returns a short random fund identifier.
func NewFundID() string {
	return "fund_" + uuid.New().String()[:8]
}

// RecordKey identifies one month of one fund.
func RecordKey(fundID string, month models.MonthKey) string {
	return fundID + "_" + month.String()
}

// Touch assigns an ID when missing and stamps the fund's timestamps.
func Touch(fund *models.FundConfig, now time.Time) {
	if fund.ID == "" {
		fund.ID = NewFundID()
	}
	if fund.CreatedAt.IsZero() {
		fund.CreatedAt = now
	}
	fund.UpdatedAt = now
}

func FromFund(f *models.FundConfig) FundDoc {
	doc := FundDoc{
		FundID:            f.ID,
		Name:              f.Name,
		ChitValue:         f.ChitValue.String(),
		InstallmentAmount: f.InstallmentAmount.String(),
		TotalMonths:       f.TotalMonths,
		StartMonth:        f.StartMonth.String(),
		EndMonth:          f.EndMonth.String(),
		ExitPayout:        f.ExitPayout.String(),
		Notes:             f.Notes,
		CreatedAt:         f.CreatedAt.UTC(),
		UpdatedAt:         f.UpdatedAt.UTC(),
	}
	if f.HasEarlyExit() {
		doc.EarlyExitMonth = f.EarlyExitMonth.String()
	}
	return doc
}

func (d FundDoc) ToFund() (*models.FundConfig, error) {
	f := &models.FundConfig{
		ID:          d.FundID,
		Name:        d.Name,
		TotalMonths: d.TotalMonths,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	var err error
	if f.ChitValue, err = parseAmount(d.ChitValue); err != nil {
		return nil, fmt.Errorf("fund %s chit_value: %w", d.FundID, err)
	}
	if f.InstallmentAmount, err = parseAmount(d.InstallmentAmount); err != nil {
		return nil, fmt.Errorf("fund %s installment_amount: %w", d.FundID, err)
	}
	if f.ExitPayout, err = parseAmount(d.ExitPayout); err != nil {
		return nil, fmt.Errorf("fund %s exit_payout: %w", d.FundID, err)
	}
	if err = f.StartMonth.UnmarshalText([]byte(d.StartMonth)); err != nil {
		return nil, fmt.Errorf("fund %s start_month: %w", d.FundID, err)
	}
	if err = f.EndMonth.UnmarshalText([]byte(d.EndMonth)); err != nil {
		return nil, fmt.Errorf("fund %s end_month: %w", d.FundID, err)
	}
	if d.EarlyExitMonth != "" {
		exit, err := models.ParseMonthKey(d.EarlyExitMonth)
		if err != nil {
			return nil, fmt.Errorf("fund %s early_exit_month: %w", d.FundID, err)
		}
		f.EarlyExitMonth = &exit
	}
	return f, nil
}

func FromRecord(fundID string, r models.MonthlyRecord) RecordDoc {
	return RecordDoc{
		FundID:          fundID,
		Month:           r.Month.String(),
		InstallmentPaid: r.InstallmentPaid,
		Dividend:        r.Dividend.String(),
		PrizeMoney:      r.PrizeMoney.String(),
		Notes:           r.Notes,
	}
}

func (d RecordDoc) ToRecord() (models.MonthlyRecord, error) {
	r := models.MonthlyRecord{InstallmentPaid: d.InstallmentPaid, Notes: d.Notes}
	var err error
	if r.Month, err = models.ParseMonthKey(d.Month); err != nil {
		return r, fmt.Errorf("record %s/%s month: %w", d.FundID, d.Month, err)
	}
	if r.Dividend, err = parseAmount(d.Dividend); err != nil {
		return r, fmt.Errorf("record %s/%s dividend: %w", d.FundID, d.Month, err)
	}
	if r.PrizeMoney, err = parseAmount(d.PrizeMoney); err != nil {
		return r, fmt.Errorf("record %s/%s prize_money: %w", d.FundID, d.Month, err)
	}
	return r, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
