package analytics

import "errors"

var (
	// ErrInvalidFundConfiguration is returned when a fund's month range is inconsistent.
	ErrInvalidFundConfiguration = errors.New("invalid fund configuration")

	// ErrInvalidReferenceRate is returned for a negative or non-finite benchmark rate.
	ErrInvalidReferenceRate = errors.New("invalid reference rate")
)
