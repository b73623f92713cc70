package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/stayradar/pkg/aggregate"
	"github.com/elonfeng/stayradar/pkg/source"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "stayradar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func total(year, month int, guests int64) aggregate.NationalGuestTotal {
	p := source.YearMonth{Year: year, Month: month}
	return aggregate.NationalGuestTotal{Period: p, YearMonth: p.String(), TotalGuests: guests}
}

func holiday(date, name string) source.HolidayRecord {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		panic(err)
	}
	return source.HolidayRecord{
		Date:   d,
		Period: source.YearMonth{Year: d.Year(), Month: int(d.Month())},
		Name:   name,
	}
}

func TestSQLiteStore_MonthlyReportCountsHolidays(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Load(ctx,
		[]aggregate.NationalGuestTotal{total(2022, 1, 100)},
		[]source.HolidayRecord{holiday("2022-01-01", "元日"), holiday("2022-01-10", "成人の日")},
	)
	require.NoError(t, err)

	rows, err := s.MonthlyReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2022-1", rows[0].YearMonth)
	assert.Equal(t, int64(100), rows[0].TotalGuests)
	assert.Equal(t, 2, rows[0].HolidayCnt)
}

func TestSQLiteStore_ReportsFillMissingCountsWithZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	guests := []aggregate.NationalGuestTotal{
		total(2021, 10, 40),
		total(2021, 2, 20),
		total(2021, 12, 60),
		total(2022, 1, 100),
	}
	holidays := []source.HolidayRecord{
		holiday("2021-02-11", "建国記念の日"),
		holiday("2021-02-23", "天皇誕生日"),
		holiday("2021-11-03", "文化の日"),
		holiday("2022-01-01", "元日"),
	}
	require.NoError(t, s.Load(ctx, guests, holidays))

	monthly, err := s.MonthlyReport(ctx)
	require.NoError(t, err)

	var got []string
	counts := map[string]int{}
	for _, r := range monthly {
		got = append(got, r.YearMonth)
		counts[r.YearMonth] = r.HolidayCnt
	}
	assert.Equal(t, []string{"2021-2", "2021-10", "2021-12", "2022-1"}, got)
	assert.Equal(t, map[string]int{"2021-2": 2, "2021-10": 0, "2021-12": 0, "2022-1": 1}, counts)

	yearly, err := s.YearlyReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, []YearlyReport{
		{Year: 2021, TotalGuests: 120, HolidayCnt: 3},
		{Year: 2022, TotalGuests: 100, HolidayCnt: 1},
	}, yearly)
}

func TestSQLiteStore_YearlyReportZeroHolidays(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx, []aggregate.NationalGuestTotal{total(2019, 5, 9)}, nil))

	yearly, err := s.YearlyReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, []YearlyReport{{Year: 2019, TotalGuests: 9, HolidayCnt: 0}}, yearly)
}

func TestSQLiteStore_LoadReplacesPreviousData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx,
		[]aggregate.NationalGuestTotal{total(2020, 1, 1), total(2020, 2, 2)},
		[]source.HolidayRecord{holiday("2020-01-01", "元日")},
	))
	require.NoError(t, s.Load(ctx,
		[]aggregate.NationalGuestTotal{total(2022, 1, 100)},
		[]source.HolidayRecord{holiday("2022-01-01", "元日"), holiday("2022-01-10", "成人の日")},
	))

	monthly, err := s.MonthlyReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, []MonthlyReport{{YearMonth: "2022-1", Year: 2022, Month: 1, TotalGuests: 100, HolidayCnt: 2}}, monthly)

	table, err := s.RawQuery(ctx, "SELECT COUNT(*) AS n FROM holidays")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.EqualValues(t, 2, table.Rows[0][0])
}

func TestSQLiteStore_FailedLoadKeepsPreviousData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx, []aggregate.NationalGuestTotal{total(2020, 1, 1)}, nil))

	err := s.Load(ctx, []aggregate.NationalGuestTotal{total(2022, 1, 1), total(2022, 1, 2)}, nil)
	require.Error(t, err)

	monthly, err := s.MonthlyReport(ctx)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "2020-1", monthly[0].YearMonth)
}

func TestSQLiteStore_ReportsOnEmptyDatabase(t *testing.T) {
	s := newTestStore(t)

	monthly, err := s.MonthlyReport(context.Background())
	require.NoError(t, err)
	assert.Empty(t, monthly)

	yearly, err := s.YearlyReport(context.Background())
	require.NoError(t, err)
	assert.Empty(t, yearly)
}

func TestSQLiteStore_RawQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx,
		[]aggregate.NationalGuestTotal{total(2022, 1, 100)},
		[]source.HolidayRecord{holiday("2022-01-01", "元日")},
	))

	table, err := s.RawQuery(ctx, "SELECT date, year_month, holiday_name FROM holidays")
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "year_month", "holiday_name"}, table.Columns)
	assert.Equal(t, [][]any{{"2022-01-01", "2022-1", "元日"}}, table.Rows)

	_, err = s.RawQuery(ctx, "SELEC nonsense")
	var qErr *QueryError
	require.True(t, errors.As(err, &qErr))
	assert.Equal(t, "SELEC nonsense", qErr.Query)

	_, err = s.RawQuery(ctx, "SELECT * FROM missing_table")
	assert.True(t, errors.As(err, &qErr))
}
