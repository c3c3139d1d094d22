package analytics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestCompareToReference(t *testing.T) {
	tests := []struct {
		name       string
		fund       *float64
		ref        float64
		comparable bool
		better     bool
		diff       float64
	}{
		{name: "fund ahead", fund: ptr(12.5), ref: 7.0, comparable: true, better: true, diff: 5.5},
		{name: "fund behind", fund: ptr(4.0), ref: 7.0, comparable: true, better: false, diff: -3.0},
		{name: "equal is not better", fund: ptr(7.0), ref: 7.0, comparable: true, better: false, diff: 0},
		{name: "zero reference", fund: ptr(-2.0), ref: 0, comparable: true, better: false, diff: -2.0},
		{name: "no fund rate", fund: nil, ref: 7.0},
		{name: "nan fund rate", fund: ptr(math.NaN()), ref: 7.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CompareToReference(tt.fund, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.ref, result.ReferenceRatePct)
			assert.Equal(t, tt.comparable, result.Comparable)
			assert.Equal(t, tt.better, result.IsFundBetter)
			if !tt.comparable {
				assert.Nil(t, result.FundRatePct)
				assert.Nil(t, result.Difference)
				return
			}
			require.NotNil(t, result.Difference)
			assert.InDelta(t, tt.diff, *result.Difference, 1e-12)
		})
	}
}

func TestCompareToReference_InvalidReference(t *testing.T) {
	for _, ref := range []float64{-1, -0.01, math.NaN(), math.Inf(1)} {
		_, err := CompareToReference(ptr(12.5), ref)
		require.Error(t, err, "ref %v", ref)
		assert.True(t, errors.Is(err, ErrInvalidReferenceRate))
	}
}

func TestCompareToReference_DoesNotAliasInput(t *testing.T) {
	rate := 9.0
	result, err := CompareToReference(&rate, 7.0)
	require.NoError(t, err)
	rate = 1.0
	assert.Equal(t, 9.0, *result.FundRatePct)
}
