package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/stayradar/pkg/aggregate"
	"github.com/elonfeng/stayradar/pkg/source"
)

// MonthlyReport joins a month's national guest total with its holiday count.
type MonthlyReport struct {
	YearMonth   string `db:"year_month" json:"year_month"`
	Year        int    `db:"year" json:"-"`
	Month       int    `db:"month" json:"-"`
	TotalGuests int64  `db:"total_guests" json:"total_guests"`
	HolidayCnt  int    `db:"holiday_cnt" json:"holiday_cnt"`
}

// YearlyReport is MonthlyReport summed over a calendar year.
type YearlyReport struct {
	Year        int   `db:"year" json:"year"`
	TotalGuests int64 `db:"total_guests" json:"total_guests"`
	HolidayCnt  int   `db:"holiday_cnt" json:"holiday_cnt"`
}

// Table is the untyped result of a raw query.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// QueryError wraps any failure of a caller-supplied query.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Store is the persistence interface.
type Store interface {
	Load(ctx context.Context, guests []aggregate.NationalGuestTotal, holidays []source.HolidayRecord) error
	MonthlyReport(ctx context.Context) ([]MonthlyReport, error)
	YearlyReport(ctx context.Context) ([]YearlyReport, error)
	RawQuery(ctx context.Context, query string) (*Table, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and creates missing tables.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases and DDL inside Load consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type guestRow struct {
	YearMonth   string `db:"year_month"`
	Year        int    `db:"year"`
	Month       int    `db:"month"`
	TotalGuests int64  `db:"total_guests"`
}

type holidayRow struct {
	Date        string `db:"date"`
	YearMonth   string `db:"year_month"`
	Year        int    `db:"year"`
	Month       int    `db:"month"`
	HolidayName string `db:"holiday_name"`
}

// Load drops and recreates both tables and inserts the given rows. Prior
// contents are discarded. On failure the previous contents are kept.
func (s *SQLiteStore) Load(ctx context.Context, guests []aggregate.NationalGuestTotal, holidays []source.HolidayRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, dropTables); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	guestStmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO guests (year_month, year, month, total_guests)
		VALUES (:year_month, :year, :month, :total_guests)
	`)
	if err != nil {
		return fmt.Errorf("prepare guest insert: %w", err)
	}
	defer guestStmt.Close()

	for _, g := range guests {
		row := guestRow{
			YearMonth:   g.Period.String(),
			Year:        g.Period.Year,
			Month:       g.Period.Month,
			TotalGuests: g.TotalGuests,
		}
		if _, err := guestStmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("insert guests %s: %w", row.YearMonth, err)
		}
	}

	holidayStmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO holidays (date, year_month, year, month, holiday_name)
		VALUES (:date, :year_month, :year, :month, :holiday_name)
	`)
	if err != nil {
		return fmt.Errorf("prepare holiday insert: %w", err)
	}
	defer holidayStmt.Close()

	for _, h := range holidays {
		row := holidayRow{
			Date:        h.Date.Format(time.DateOnly),
			YearMonth:   h.Period.String(),
			Year:        h.Period.Year,
			Month:       h.Period.Month,
			HolidayName: h.Name,
		}
		if _, err := holidayStmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("insert holiday %s: %w", row.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MonthlyReport(ctx context.Context) ([]MonthlyReport, error) {
	var rows []MonthlyReport
	if err := s.db.SelectContext(ctx, &rows, monthlyReportQuery); err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	return rows, nil
}

func (s *SQLiteStore) YearlyReport(ctx context.Context) ([]YearlyReport, error) {
	var rows []YearlyReport
	if err := s.db.SelectContext(ctx, &rows, yearlyReportQuery); err != nil {
		return nil, fmt.Errorf("yearly report: %w", err)
	}
	return rows, nil
}

// RawQuery runs caller-supplied SQL and returns every result row. It does not
// filter the statement; see report.Denylist for the best-effort guard.
func (s *SQLiteStore) RawQuery(ctx context.Context, query string) (*Table, error) {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	table := &Table{Columns: cols}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return table, nil
}
