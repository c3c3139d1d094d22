package impexp

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/shopspring/decimal"
)

// RecordHeader is the column order of a record sheet.
var RecordHeader = []string{"month", "installment_paid", "dividend", "prize_money"}

// EventHeader is the column order of an event sheet.
var EventHeader = []string{"date", "amount"}

// ErrInvalidSheet matches every CSV decoding error, including LineError.
var ErrInvalidSheet = errors.New("invalid CSV sheet")

// LineError reports a bad row in a CSV sheet.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func (e *LineError) Is(target error) bool {
	return target == ErrInvalidSheet
}

// readSheet returns the data rows of a CSV sheet with their line numbers.
// The header row is optional; when present it must match header exactly.
func readSheet(r io.Reader, header []string) ([][]string, []int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var rows [][]string
	var lines []int
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(row) {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), header[0]) {
				if !matchesHeader(row, header) {
					return nil, nil, &LineError{Line: line, Err: fmt.Errorf("expected header %s", strings.Join(header, ","))}
				}
				continue
			}
		}
		if len(row) != len(header) {
			return nil, nil, &LineError{Line: line, Err: fmt.Errorf("expected %d columns, got %d", len(header), len(row))}
		}
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return rows, lines, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func matchesHeader(row, header []string) bool {
	if len(row) != len(header) {
		return false
	}
	for i := range header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), header[i]) {
			return false
		}
	}
	return true
}

// DecodeRecordsCSV parses a record sheet: month,installment_paid,dividend,prize_money.
// Empty amount cells read as zero.
func DecodeRecordsCSV(r io.Reader) ([]models.MonthlyRecord, error) {
	rows, lines, err := readSheet(r, RecordHeader)
	if err != nil {
		return nil, err
	}

	records := make([]models.MonthlyRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := parseRecordRow(row)
		if err != nil {
			return nil, &LineError{Line: lines[i], Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecordRow(row []string) (models.MonthlyRecord, error) {
	var rec models.MonthlyRecord
	month, err := models.ParseMonthKey(row[0])
	if err != nil {
		return rec, err
	}
	rec.Month = month

	if paid := strings.TrimSpace(row[1]); paid != "" {
		rec.InstallmentPaid, err = parseBool(paid)
		if err != nil {
			return rec, err
		}
	}
	if rec.Dividend, err = parseAmount("dividend", row[2]); err != nil {
		return rec, err
	}
	if rec.PrizeMoney, err = parseAmount("prize_money", row[3]); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid installment_paid %q", s)
	}
	return b, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative: %s", field, s)
	}
	return d, nil
}

// EncodeRecordsCSV writes records as a record sheet with a header row.
func EncodeRecordsCSV(w io.Writer, records []models.MonthlyRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(RecordHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write([]string{
			rec.Month.String(),
			strconv.FormatBool(rec.InstallmentPaid),
			rec.Dividend.String(),
			rec.PrizeMoney.String(),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// DecodeEventsCSV parses an event sheet: date,amount with dates as YYYY-MM-DD.
func DecodeEventsCSV(r io.Reader) ([]models.CashFlowEvent, error) {
	rows, lines, err := readSheet(r, EventHeader)
	if err != nil {
		return nil, err
	}

	events := make([]models.CashFlowEvent, 0, len(rows))
	for i, row := range rows {
		ev, err := models.ParseCashFlowEvent(row[1], row[0])
		if err != nil {
			return nil, &LineError{Line: lines[i], Err: err}
		}
		events = append(events, ev)
	}
	return events, nil
}
