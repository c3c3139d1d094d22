package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/chitlens/internal/models"
)

// ErrFundNotFound is returned by FundStore lookups for an unknown fund ID.
var ErrFundNotFound = errors.New("fund not found")

// FundStore persists fund configurations and their monthly records.
type FundStore interface {
	// SaveFund inserts or updates a fund. An empty ID is assigned.
	SaveFund(ctx context.Context, fund *models.FundConfig) error
	GetFund(ctx context.Context, id string) (*models.FundConfig, error)
	// ListFunds returns all funds ordered by name.
	ListFunds(ctx context.Context) ([]*models.FundConfig, error)
	// DeleteFund removes a fund and all of its records.
	DeleteFund(ctx context.Context, id string) error

	// PutRecord inserts or replaces the record for (fundID, record.Month).
	PutRecord(ctx context.Context, fundID string, record models.MonthlyRecord) error
	// ListRecords returns a fund's records ordered by month.
	ListRecords(ctx context.Context, fundID string) ([]models.MonthlyRecord, error)
	DeleteRecord(ctx context.Context, fundID string, month models.MonthKey) error

	Close() error
}
