package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobmcallan/chitlens/internal/interfaces"
)

const testFundJSON = `{
  "fund": {
    "name": "Office chit",
    "chit_value": "100000",
    "installment_amount": "5000",
    "start_month": "2024-01",
    "end_month": "2024-03"
  },
  "records": [
    {"month": "2024-01", "installment_paid": true, "dividend": "1000", "prize_money": "0"},
    {"month": "2024-02", "installment_paid": true, "dividend": "1200", "prize_money": "25000"}
  ]
}`

func TestImportFundFile_Success(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "fund.json")
	if err := os.WriteFile(path, []byte(testFundJSON), 0644); err != nil {
		t.Fatalf("write fund file: %v", err)
	}

	fund, imported, skipped, err := ImportFundFile(ctx, a.Store, a.Logger, path)
	if err != nil {
		t.Fatalf("ImportFundFile failed: %v", err)
	}
	if imported != 2 || skipped != 0 {
		t.Errorf("imported=%d skipped=%d, want 2/0", imported, skipped)
	}
	if fund.ID == "" {
		t.Fatal("fund ID not assigned")
	}

	report, err := a.Analytics.ReportForFund(ctx, fund.ID, nil)
	if err != nil {
		t.Fatalf("ReportForFund failed: %v", err)
	}
	if got := report.Summary.NetAmount.String(); got != "17200" {
		t.Errorf("net amount = %s, want 17200", got)
	}
	if len(report.Series.Gaps) != 1 || report.Series.Gaps[0].String() != "2024-03" {
		t.Errorf("gaps = %v, want [2024-03]", report.Series.Gaps)
	}
}

func TestImportFundFile_Missing(t *testing.T) {
	a := newTestApp(t)
	_, _, _, err := ImportFundFile(context.Background(), a.Store, a.Logger, filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportRecordsCSV(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "fund.json")
	if err := os.WriteFile(path, []byte(testFundJSON), 0644); err != nil {
		t.Fatalf("write fund file: %v", err)
	}
	fund, _, _, err := ImportFundFile(ctx, a.Store, a.Logger, path)
	if err != nil {
		t.Fatalf("ImportFundFile failed: %v", err)
	}

	sheet := "month,installment_paid,dividend,prize_money\n2024-03,true,900,0\n"
	imported, skipped, err := ImportRecordsCSV(ctx, a.Store, a.Logger, fund.ID, strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("ImportRecordsCSV failed: %v", err)
	}
	if imported != 1 || skipped != 0 {
		t.Errorf("imported=%d skipped=%d, want 1/0", imported, skipped)
	}

	doc, err := ExportDocument(ctx, a.Store, fund.ID)
	if err != nil {
		t.Fatalf("ExportDocument failed: %v", err)
	}
	if len(doc.Records) != 3 {
		t.Errorf("exported %d records, want 3", len(doc.Records))
	}

	_, _, err = ImportRecordsCSV(ctx, a.Store, a.Logger, "fund_missing", strings.NewReader(sheet))
	if !errors.Is(err, interfaces.ErrFundNotFound) {
		t.Errorf("unknown fund error = %v, want ErrFundNotFound", err)
	}
}
