package surrealdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/bobmcallan/chitlens/internal/storage/schema"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// writeAttempts bounds retries of UPSERT statements.
const writeAttempts = 3

// FundStore implements interfaces.FundStore on SurrealDB.
// Funds live in the fund table keyed by fund ID; records live in fund_record
// keyed by <fundID>_<YYYY-MM>.
type FundStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

var _ interfaces.FundStore = (*FundStore)(nil)

// NewFundStore wraps an open connection and defines the tables it needs.
func NewFundStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*FundStore, error) {
	if err := defineTables(ctx, db); err != nil {
		return nil, err
	}
	return &FundStore{db: db, logger: logger}, nil
}

func fundRID(id string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(schema.FundTable, id)
}

func recordRID(fundID string, month models.MonthKey) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(schema.RecordTable, schema.RecordKey(fundID, month))
}

func (s *FundStore) upsert(ctx context.Context, rid surrealmodels.RecordID, content any) error {
	sql := "UPSERT $rid CONTENT $content"
	vars := map[string]any{"rid": rid, "content": content}

	var lastErr error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		_, err := surrealdb.Query[any](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
		s.logger.Debug().Err(err).Int("attempt", attempt).Msg("UPSERT failed")
	}
	return lastErr
}

func (s *FundStore) SaveFund(ctx context.Context, fund *models.FundConfig) error {
	if fund.ID != "" && fund.CreatedAt.IsZero() {
		if existing, err := s.GetFund(ctx, fund.ID); err == nil {
			fund.CreatedAt = existing.CreatedAt
		}
	}
	schema.Touch(fund, time.Now().UTC())

	if err := s.upsert(ctx, fundRID(fund.ID), schema.FromFund(fund)); err != nil {
		return fmt.Errorf("failed to save fund %s after retries: %w", fund.ID, err)
	}
	return nil
}

func (s *FundStore) GetFund(ctx context.Context, id string) (*models.FundConfig, error) {
	doc, err := surrealdb.Select[schema.FundDoc](ctx, s.db, fundRID(id))
	if err != nil && !isNotFoundError(err) {
		return nil, fmt.Errorf("failed to select fund %s: %w", id, err)
	}
	if doc == nil || doc.FundID == "" {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrFundNotFound, id)
	}
	return doc.ToFund()
}

func (s *FundStore) ListFunds(ctx context.Context) ([]*models.FundConfig, error) {
	results, err := surrealdb.Query[[]schema.FundDoc](ctx, s.db, "SELECT * FROM fund ORDER BY name ASC", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	funds := []*models.FundConfig{}
	if results != nil && len(*results) > 0 {
		for _, doc := range (*results)[0].Result {
			fund, err := doc.ToFund()
			if err != nil {
				return nil, err
			}
			funds = append(funds, fund)
		}
	}
	sort.SliceStable(funds, func(i, j int) bool { return funds[i].Name < funds[j].Name })
	return funds, nil
}

func (s *FundStore) DeleteFund(ctx context.Context, id string) error {
	if _, err := s.GetFund(ctx, id); err != nil {
		return err
	}
	if _, err := surrealdb.Delete[schema.FundDoc](ctx, s.db, fundRID(id)); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete fund %s: %w", id, err)
	}
	sql := "DELETE fund_record WHERE fund_id = $fund_id"
	if _, err := surrealdb.Query[any](ctx, s.db, sql, map[string]any{"fund_id": id}); err != nil {
		return fmt.Errorf("failed to delete records for fund %s: %w", id, err)
	}
	s.logger.Debug().Str("fund_id", id).Msg("Fund deleted")
	return nil
}

func (s *FundStore) PutRecord(ctx context.Context, fundID string, record models.MonthlyRecord) error {
	if record.Month.IsZero() {
		return fmt.Errorf("record month is required")
	}
	if _, err := s.GetFund(ctx, fundID); err != nil {
		return err
	}
	if err := s.upsert(ctx, recordRID(fundID, record.Month), schema.FromRecord(fundID, record)); err != nil {
		return fmt.Errorf("failed to put record %s for fund %s after retries: %w", record.Month, fundID, err)
	}
	return nil
}

func (s *FundStore) ListRecords(ctx context.Context, fundID string) ([]models.MonthlyRecord, error) {
	sql := "SELECT * FROM fund_record WHERE fund_id = $fund_id ORDER BY month ASC"
	results, err := surrealdb.Query[[]schema.RecordDoc](ctx, s.db, sql, map[string]any{"fund_id": fundID})
	if err != nil {
		return nil, fmt.Errorf("failed to list records for fund %s: %w", fundID, err)
	}

	records := []models.MonthlyRecord{}
	if results != nil && len(*results) > 0 {
		for _, doc := range (*results)[0].Result {
			rec, err := doc.ToRecord()
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *FundStore) DeleteRecord(ctx context.Context, fundID string, month models.MonthKey) error {
	_, err := surrealdb.Delete[schema.RecordDoc](ctx, s.db, recordRID(fundID, month))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete record %s for fund %s: %w", month, fundID, err)
	}
	return nil
}

func (s *FundStore) Close() error {
	s.db.Close(context.Background())
	return nil
}
