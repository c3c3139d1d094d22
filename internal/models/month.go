package models

import (
	"fmt"
	"strings"
	"time"
)

// MonthKeyLayout is the canonical text form of a MonthKey.
const MonthKeyLayout = "2006-01"

// MonthKey identifies a calendar month (e.g. "2024-01").
// The zero value is an unset month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// NewMonthKey returns the MonthKey for year/month, normalising out-of-range months.
func NewMonthKey(year int, month time.Month) MonthKey {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// MonthKeyOf returns the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses "YYYY-MM". A full date ("YYYY-MM-DD") is accepted and truncated to its month.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(MonthKeyLayout, s); err == nil {
		return MonthKeyOf(t), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return MonthKeyOf(t), nil
	}
	return MonthKey{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
}

// MustMonthKey is ParseMonthKey for literals; it panics on bad input.
func MustMonthKey(s string) MonthKey {
	m, err := ParseMonthKey(s)
	if err != nil {
		panic(err)
	}
	return m
}

// IsZero reports whether the month is unset.
func (m MonthKey) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m MonthKey) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// FirstDay returns midnight UTC on the first day of the month.
func (m MonthKey) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month.
func (m MonthKey) Next() MonthKey {
	return m.AddMonths(1)
}

// AddMonths returns the month n months later (n may be negative).
func (m MonthKey) AddMonths(n int) MonthKey {
	return NewMonthKey(m.Year, m.Month+time.Month(n))
}

func (m MonthKey) index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Before reports whether m is strictly earlier than o.
func (m MonthKey) Before(o MonthKey) bool {
	return m.index() < o.index()
}

// After reports whether m is strictly later than o.
func (m MonthKey) After(o MonthKey) bool {
	return m.index() > o.index()
}

// MonthsUntil returns the signed number of months from m to o (o - m).
func (m MonthKey) MonthsUntil(o MonthKey) int {
	return o.index() - m.index()
}

// MarshalText implements encoding.TextMarshaler.
func (m MonthKey) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the zero month.
func (m *MonthKey) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*m = MonthKey{}
		return nil
	}
	parsed, err := ParseMonthKey(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MonthRange returns every month from start to end inclusive. Empty when start is after end.
func MonthRange(start, end MonthKey) []MonthKey {
	n := start.MonthsUntil(end)
	if n < 0 {
		return nil
	}
	months := make([]MonthKey, 0, n+1)
	for m := start; !m.After(end); m = m.Next() {
		months = append(months, m)
	}
	return months
}
