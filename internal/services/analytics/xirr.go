package analytics

import (
	"math"
	"time"

	"github.com/bobmcallan/chitlens/internal/models"
)

const (
	daysPerYear = 365.0

	newtonGuess      = 0.1
	newtonMaxIter    = 100
	npvTolerance     = 1e-6
	rateTolerance    = 1e-7
	derivativeFloor  = 1e-10
	bisectLow        = -0.999
	bisectHigh       = 10.0
	bisectSamples    = 200
	bisectMaxIter    = 200
	bisectWidthFloor = 1e-12
)

// cashFlow is an event reduced to a year offset and a float amount.
type cashFlow struct {
	years  float64
	amount float64
}

// ComputeXIRR returns the annualised rate r (as a fraction) at which the NPV
// of events is zero, using actual/365 day counting from the earliest date.
//
// ok is false when the rate is undefined: fewer than two events or dates,
// no sign change, an unset date or non-finite amount, or no convergence.
func ComputeXIRR(events []models.CashFlowEvent) (rate float64, ok bool) {
	flows, ok := prepareFlows(events)
	if !ok {
		return 0, false
	}

	if r, ok := newtonXIRR(flows); ok {
		return r, true
	}
	return bisectXIRR(flows)
}

// ComputeXIRRPercent is ComputeXIRR scaled to a percentage.
func ComputeXIRRPercent(events []models.CashFlowEvent) (float64, bool) {
	r, ok := ComputeXIRR(events)
	if !ok {
		return 0, false
	}
	return r * 100, true
}

// prepareFlows validates events and converts them to year offsets.
func prepareFlows(events []models.CashFlowEvent) ([]cashFlow, bool) {
	if len(events) < 2 {
		return nil, false
	}

	var base time.Time
	hasNeg, hasPos := false, false
	amounts := make([]float64, len(events))
	for i, ev := range events {
		if ev.When.IsZero() {
			return nil, false
		}
		a := ev.Amount.InexactFloat64()
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, false
		}
		amounts[i] = a
		if a < 0 {
			hasNeg = true
		} else if a > 0 {
			hasPos = true
		}
		d := calendarDate(ev.When)
		if i == 0 || d.Before(base) {
			base = d
		}
	}
	if !hasNeg || !hasPos {
		return nil, false
	}

	flows := make([]cashFlow, len(events))
	distinct := false
	for i, ev := range events {
		days := float64(daysBetween(base, calendarDate(ev.When)))
		if days != 0 {
			distinct = true
		}
		flows[i] = cashFlow{years: days / daysPerYear, amount: amounts[i]}
	}
	if !distinct {
		return nil, false
	}
	return flows, true
}

// calendarDate drops the time of day so day counts ignore clock and zone offsets.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b on UTC midnights. Unix seconds are
// used instead of time.Duration, which overflows past about 292 years.
func daysBetween(a, b time.Time) int64 {
	return (b.Unix() - a.Unix()) / 86400
}

// npv returns NPV(rate) and its analytic derivative. ok is false when 1+rate <= 0
// or the result is not finite.
func npv(flows []cashFlow, rate float64) (value, deriv float64, ok bool) {
	base := 1 + rate
	if base <= 0 {
		return 0, 0, false
	}
	for _, f := range flows {
		discount := math.Pow(base, f.years)
		value += f.amount / discount
		if f.years != 0 {
			deriv -= f.years * f.amount / (discount * base)
		}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || math.IsNaN(deriv) || math.IsInf(deriv, 0) {
		return 0, 0, false
	}
	return value, deriv, true
}

// newtonXIRR runs Newton-Raphson from a fixed 10% guess.
func newtonXIRR(flows []cashFlow) (float64, bool) {
	rate := newtonGuess
	for iter := 0; iter < newtonMaxIter; iter++ {
		value, deriv, ok := npv(flows, rate)
		if !ok {
			return 0, false
		}
		if math.Abs(deriv) < derivativeFloor {
			return 0, false
		}

		next := rate - value/deriv
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			return 0, false
		}

		nextValue, _, ok := npv(flows, next)
		if !ok {
			return 0, false
		}
		if math.Abs(nextValue) < npvTolerance || math.Abs(next-rate) < rateTolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}

// bisectXIRR samples [bisectLow, bisectHigh] for the first sign change of NPV
// and bisects inside it.
func bisectXIRR(flows []cashFlow) (float64, bool) {
	lo, hi, ok := findBracket(flows)
	if !ok {
		return 0, false
	}

	npvLo, _, _ := npv(flows, lo)
	for iter := 0; iter < bisectMaxIter; iter++ {
		mid := (lo + hi) / 2
		npvMid, _, ok := npv(flows, mid)
		if !ok {
			return 0, false
		}
		if math.Abs(npvMid) < npvTolerance || hi-lo < bisectWidthFloor {
			return mid, true
		}
		if (npvMid < 0) == (npvLo < 0) {
			lo, npvLo = mid, npvMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}

// findBracket walks a fixed grid and returns the first sub-interval whose
// endpoints have NPVs of opposite sign (or an exact root).
func findBracket(flows []cashFlow) (lo, hi float64, ok bool) {
	step := (bisectHigh - bisectLow) / bisectSamples
	prevRate := bisectLow
	prevValue, _, prevOK := npv(flows, prevRate)
	for i := 1; i <= bisectSamples; i++ {
		rate := bisectLow + float64(i)*step
		value, _, valOK := npv(flows, rate)
		if prevOK && valOK {
			if prevValue == 0 {
				return prevRate, prevRate, true
			}
			if (prevValue < 0) != (value < 0) || value == 0 {
				return prevRate, rate, true
			}
		}
		prevRate, prevValue, prevOK = rate, value, valOK
	}
	return 0, 0, false
}
