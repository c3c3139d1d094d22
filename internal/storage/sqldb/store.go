// Package sqldb implements FundStore over database/sql for SQLite and PostgreSQL.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/interfaces"
	"github.com/bobmcallan/chitlens/internal/models"
	"github.com/bobmcallan/chitlens/internal/storage/schema"

	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Dialect selects the driver and placeholder style.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

const timeLayout = time.RFC3339Nano

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS fund (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		chit_value         TEXT NOT NULL,
		installment_amount TEXT NOT NULL,
		total_months       INTEGER NOT NULL,
		start_month        TEXT NOT NULL,
		end_month          TEXT NOT NULL,
		early_exit_month   TEXT NOT NULL DEFAULT '',
		exit_payout        TEXT NOT NULL DEFAULT '0',
		notes              TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fund_record (
		fund_id          TEXT NOT NULL,
		month            TEXT NOT NULL,
		installment_paid BOOLEAN NOT NULL,
		dividend         TEXT NOT NULL,
		prize_money      TEXT NOT NULL,
		notes            TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (fund_id, month)
	)`,
}

const fundColumns = "id, name, chit_value, installment_amount, total_months, start_month, end_month, early_exit_month, exit_payout, notes, created_at, updated_at"

// Store is a FundStore backed by a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *common.Logger
}

var _ interfaces.FundStore = (*Store)(nil)

// Open connects to the database and creates the schema if needed.
// For SQLite the DSN is a file path; its directory is created.
func Open(ctx context.Context, dialect Dialect, dsn string, logger *common.Logger) (*Store, error) {
	switch dialect {
	case SQLite:
		if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case Postgres:
	default:
		return nil, fmt.Errorf("unsupported SQL dialect: %s", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// SQLite allows one writer at a time.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	s := &Store{db: db, dialect: dialect, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("dialect", string(dialect)).Msg("SQL fund store initialized")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, q execer, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) SaveFund(ctx context.Context, fund *models.FundConfig) error {
	schema.Touch(fund, time.Now().UTC())
	d := schema.FromFund(fund)

	query := `INSERT INTO fund (` + fundColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			chit_value = excluded.chit_value,
			installment_amount = excluded.installment_amount,
			total_months = excluded.total_months,
			start_month = excluded.start_month,
			end_month = excluded.end_month,
			early_exit_month = excluded.early_exit_month,
			exit_payout = excluded.exit_payout,
			notes = excluded.notes,
			updated_at = excluded.updated_at`
	_, err := s.exec(ctx, s.db, query,
		d.FundID, d.Name, d.ChitValue, d.InstallmentAmount, d.TotalMonths,
		d.StartMonth, d.EndMonth, d.EarlyExitMonth, d.ExitPayout, d.Notes,
		d.CreatedAt.Format(timeLayout), d.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save fund %s: %w", fund.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFund(row scanner) (*models.FundConfig, error) {
	var d schema.FundDoc
	var created, updated string
	if err := row.Scan(&d.FundID, &d.Name, &d.ChitValue, &d.InstallmentAmount, &d.TotalMonths,
		&d.StartMonth, &d.EndMonth, &d.EarlyExitMonth, &d.ExitPayout, &d.Notes,
		&created, &updated); err != nil {
		return nil, err
	}
	var err error
	if d.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("fund %s created_at: %w", d.FundID, err)
	}
	if d.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("fund %s updated_at: %w", d.FundID, err)
	}
	return d.ToFund()
}

func (s *Store) GetFund(ctx context.Context, id string) (*models.FundConfig, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+fundColumns+` FROM fund WHERE id = ?`), id)
	fund, err := scanFund(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrFundNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund %s: %w", id, err)
	}
	return fund, nil
}

func (s *Store) ListFunds(ctx context.Context) ([]*models.FundConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+fundColumns+` FROM fund ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	funds := []*models.FundConfig{}
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, fund)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	return funds, nil
}

func (s *Store) DeleteFund(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.exec(ctx, tx, `DELETE FROM fund WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fund %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", interfaces.ErrFundNotFound, id)
	}
	if _, err := s.exec(ctx, tx, `DELETE FROM fund_record WHERE fund_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete records for fund %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fund delete: %w", err)
	}
	return nil
}

func (s *Store) fundExists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM fund WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", interfaces.ErrFundNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to look up fund %s: %w", id, err)
	}
	return nil
}

func (s *Store) PutRecord(ctx context.Context, fundID string, record models.MonthlyRecord) error {
	if record.Month.IsZero() {
		return fmt.Errorf("record month is required")
	}
	if err := s.fundExists(ctx, fundID); err != nil {
		return err
	}
	d := schema.FromRecord(fundID, record)
	query := `INSERT INTO fund_record (fund_id, month, installment_paid, dividend, prize_money, notes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (fund_id, month) DO UPDATE SET
			installment_paid = excluded.installment_paid,
			dividend = excluded.dividend,
			prize_money = excluded.prize_money,
			notes = excluded.notes`
	if _, err := s.exec(ctx, s.db, query, d.FundID, d.Month, d.InstallmentPaid, d.Dividend, d.PrizeMoney, d.Notes); err != nil {
		return fmt.Errorf("failed to put record %s for fund %s: %w", d.Month, fundID, err)
	}
	return nil
}

func (s *Store) ListRecords(ctx context.Context, fundID string) ([]models.MonthlyRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT fund_id, month, installment_paid, dividend, prize_money, notes
		FROM fund_record WHERE fund_id = ? ORDER BY month`), fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for fund %s: %w", fundID, err)
	}
	defer rows.Close()

	records := []models.MonthlyRecord{}
	for rows.Next() {
		var d schema.RecordDoc
		if err := rows.Scan(&d.FundID, &d.Month, &d.InstallmentPaid, &d.Dividend, &d.PrizeMoney, &d.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec, err := d.ToRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records for fund %s: %w", fundID, err)
	}
	return records, nil
}

func (s *Store) DeleteRecord(ctx context.Context, fundID string, month models.MonthKey) error {
	if _, err := s.exec(ctx, s.db, `DELETE FROM fund_record WHERE fund_id = ? AND month = ?`, fundID, month.String()); err != nil {
		return fmt.Errorf("failed to delete record %s for fund %s: %w", month, fundID, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
