package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEndMonth(t *testing.T) {
	f := FundConfig{StartMonth: MustMonthKey("2024-01"), TotalMonths: 20}
	f.ResolveEndMonth()
	assert.Equal(t, "2025-08", f.EndMonth.String())

	f = FundConfig{StartMonth: MustMonthKey("2024-03"), EndMonth: MustMonthKey("2024-12")}
	f.ResolveEndMonth()
	assert.Equal(t, 10, f.TotalMonths)

	// An explicit end month is never overwritten
	f = FundConfig{StartMonth: MustMonthKey("2024-01"), EndMonth: MustMonthKey("2024-06"), TotalMonths: 20}
	f.ResolveEndMonth()
	assert.Equal(t, "2024-06", f.EndMonth.String())

	// Backwards ranges leave TotalMonths unset
	f = FundConfig{StartMonth: MustMonthKey("2024-06"), EndMonth: MustMonthKey("2024-01")}
	f.ResolveEndMonth()
	assert.Equal(t, 0, f.TotalMonths)
}

func TestEffectiveEndMonth(t *testing.T) {
	f := FundConfig{StartMonth: MustMonthKey("2024-01"), EndMonth: MustMonthKey("2024-12")}
	assert.False(t, f.HasEarlyExit())
	assert.Equal(t, "2024-12", f.EffectiveEndMonth().String())

	exit := MustMonthKey("2024-05")
	f.EarlyExitMonth = &exit
	assert.True(t, f.HasEarlyExit())
	assert.Equal(t, "2024-05", f.EffectiveEndMonth().String())

	f.EarlyExitMonth = &MonthKey{}
	assert.False(t, f.HasEarlyExit())
}

func TestParseCashFlowEvent(t *testing.T) {
	ev, err := ParseCashFlowEvent(" -1500.50 ", "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "-1500.5", ev.Amount.String())
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), ev.When)

	_, err = ParseCashFlowEvent("abc", "2024-01-01")
	assert.Error(t, err)
	_, err = ParseCashFlowEvent("100", "2023-02-29")
	assert.Error(t, err)
}

func TestLastRecordedMonth(t *testing.T) {
	var empty CashFlowSeries
	_, ok := empty.LastRecordedMonth()
	assert.False(t, ok)

	s := CashFlowSeries{Months: []MonthFlow{{Month: MustMonthKey("2024-01")}, {Month: MustMonthKey("2024-04")}}}
	last, ok := s.LastRecordedMonth()
	require.True(t, ok)
	assert.Equal(t, "2024-04", last.String())
}
