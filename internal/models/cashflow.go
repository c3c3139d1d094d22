package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CashFlowEvent is a single dated, signed amount.
// Negative = paid by the investor (installments), positive = received
// (dividends, prize money, exit payout).
type CashFlowEvent struct {
	Amount decimal.Decimal `json:"amount"`
	When   time.Time       `json:"when"`
}

// ParseCashFlowEvent builds an event from raw text. Dates use YYYY-MM-DD.
func ParseCashFlowEvent(amount, date string) (CashFlowEvent, error) {
	a, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return CashFlowEvent{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return CashFlowEvent{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return CashFlowEvent{Amount: a, When: d}, nil
}

// MonthFlow is the per-month breakdown kept alongside the events.
type MonthFlow struct {
	Month       MonthKey        `json:"month"`
	Installment decimal.Decimal `json:"installment"`
	Dividend    decimal.Decimal `json:"dividend"`
	PrizeMoney  decimal.Decimal `json:"prize_money"`
}

// CashFlowSeries is the ordered cash flow of one fund plus the months that had no entry.
type CashFlowSeries struct {
	Events            []CashFlowEvent `json:"events"`
	Gaps              []MonthKey      `json:"gaps"`
	Months            []MonthFlow     `json:"months"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	StartMonth        MonthKey        `json:"start_month"`
	EndMonth          MonthKey        `json:"end_month"`
}

// LastRecordedMonth returns the latest month with an entry.
func (s *CashFlowSeries) LastRecordedMonth() (MonthKey, bool) {
	if s == nil || len(s.Months) == 0 {
		return MonthKey{}, false
	}
	last := s.Months[0].Month
	for _, m := range s.Months[1:] {
		if m.Month.After(last) {
			last = m.Month
		}
	}
	return last, true
}
