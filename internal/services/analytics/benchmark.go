package analytics

import (
	"fmt"
	"math"

	"github.com/bobmcallan/chitlens/internal/models"
)

// CompareToReference compares a fund's XIRR (percent) against a reference
// annual rate such as a fixed-deposit rate. A nil fund rate is incomparable.
func CompareToReference(fundRatePct *float64, referenceRatePct float64) (models.BenchmarkResult, error) {
	if math.IsNaN(referenceRatePct) || math.IsInf(referenceRatePct, 0) || referenceRatePct < 0 {
		return models.BenchmarkResult{}, fmt.Errorf("%w: %v", ErrInvalidReferenceRate, referenceRatePct)
	}

	result := models.BenchmarkResult{ReferenceRatePct: referenceRatePct}
	if fundRatePct == nil || math.IsNaN(*fundRatePct) || math.IsInf(*fundRatePct, 0) {
		return result, nil
	}

	fund := *fundRatePct
	diff := fund - referenceRatePct
	result.Comparable = true
	result.FundRatePct = &fund
	result.Difference = &diff
	result.IsFundBetter = diff > 0
	return result, nil
}
