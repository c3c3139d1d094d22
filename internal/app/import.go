package app

import (
	"context"
	"fmt"
	"io"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/impexp"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/models"
)

// ImportDocument saves a fund and its records. Records that fail to save are
// logged and skipped. Returns the saved fund and the (imported, skipped) record counts.
func ImportDocument(ctx context.Context, store interfaces.FundStore, logger *common.Logger, doc *impexp.Document) (*models.FundConfig, int, int, error) {
	fund := doc.Fund
	if err := store.SaveFund(ctx, &fund); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to save fund %q: %w", fund.Name, err)
	}

	imported, skipped := importRecords(ctx, store, logger, fund.ID, doc.Records)

	logger.Info().
		Str("fund_id", fund.ID).
		Str("name", fund.Name).
		Int("imported", imported).
		Int("skipped", skipped).
		Msg("Fund document imported")

	return &fund, imported, skipped, nil
}

// ImportFundFile reads a JSON fund document from path and imports it.
func ImportFundFile(ctx context.Context, store interfaces.FundStore, logger *common.Logger, path string) (*models.FundConfig, int, int, error) {
	doc, err := impexp.ReadDocumentFile(path)
	if err != nil {
		return nil, 0, 0, err
	}
	return ImportDocument(ctx, store, logger, doc)
}

// ImportRecordsCSV adds the records of a CSV sheet to an existing fund.
func ImportRecordsCSV(ctx context.Context, store interfaces.FundStore, logger *common.Logger, fundID string, r io.Reader) (int, int, error) {
	if _, err := store.GetFund(ctx, fundID); err != nil {
		return 0, 0, err
	}
	records, err := impexp.DecodeRecordsCSV(r)
	if err != nil {
		return 0, 0, err
	}
	imported, skipped := importRecords(ctx, store, logger, fundID, records)
	return imported, skipped, nil
}

// ExportDocument loads a fund and its records as a document.
func ExportDocument(ctx context.Context, store interfaces.FundStore, fundID string) (*impexp.Document, error) {
	fund, err := store.GetFund(ctx, fundID)
	if err != nil {
		return nil, err
	}
	records, err := store.ListRecords(ctx, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for fund %s: %w", fundID, err)
	}
	return &impexp.Document{Fund: *fund, Records: records}, nil
}

func importRecords(ctx context.Context, store interfaces.FundStore, logger *common.Logger, fundID string, records []models.MonthlyRecord) (int, int) {
	imported, skipped := 0, 0
	for _, rec := range records {
		if err := store.PutRecord(ctx, fundID, rec); err != nil {
			logger.Warn().Err(err).Str("fund_id", fundID).Str("month", rec.Month.String()).Msg("Failed to save record during import")
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped
}
