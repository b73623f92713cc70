// Package aggregate reduces per-prefecture guest records to national totals.
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"

	"github.com/elonfeng/stayradar/pkg/source"
)

// NationalGuestTotal is the national guest count for one month.
type NationalGuestTotal struct {
	Period      source.YearMonth `json:"-"`
	YearMonth   string           `json:"year_month"`
	TotalGuests int64            `json:"total_guests"`
}

// guestRow is the frame layout of a GuestRecord.
type guestRow struct {
	Year   int `dataframe:"year"`
	Month  int `dataframe:"month"`
	Value0 int `dataframe:"value0"`
	Value1 int `dataframe:"value1"`
	Value2 int `dataframe:"value2"`
	Value3 int `dataframe:"value3"`
	Value4 int `dataframe:"value4"`
}

var valueColumns = []string{"value0", "value1", "value2", "value3", "value4"}

// NationalTotals groups records by (year, month), sums each bucket across
// prefectures and adds the bucket sums into TotalGuests. The result is sorted
// by period and does not depend on the order of records.
func NationalTotals(records []source.GuestRecord) ([]NationalGuestTotal, error) {
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]guestRow, len(records))
	for i, r := range records {
		rows[i] = guestRow{
			Year:   r.Year,
			Month:  r.Month,
			Value0: int(r.Value0),
			Value1: int(r.Value1),
			Value2: int(r.Value2),
			Value3: int(r.Value3),
			Value4: int(r.Value4),
		}
	}

	df := dataframe.LoadStructs(rows)
	if df.Err != nil {
		return nil, fmt.Errorf("load guest frame: %w", df.Err)
	}

	aggs := make([]dataframe.AggregationType, len(valueColumns))
	for i := range aggs {
		aggs[i] = dataframe.Aggregation_SUM
	}
	grouped := df.GroupBy("year", "month").Aggregation(aggs, valueColumns)
	if grouped.Err != nil {
		return nil, fmt.Errorf("aggregate guests: %w", grouped.Err)
	}

	years, err := grouped.Col("year").Int()
	if err != nil {
		return nil, fmt.Errorf("read year column: %w", err)
	}
	months, err := grouped.Col("month").Int()
	if err != nil {
		return nil, fmt.Errorf("read month column: %w", err)
	}

	totals := make([]NationalGuestTotal, grouped.Nrow())
	for i := range totals {
		period := source.YearMonth{Year: years[i], Month: months[i]}
		totals[i] = NationalGuestTotal{Period: period, YearMonth: period.String()}
	}
	for _, c := range valueColumns {
		col := grouped.Col(fmt.Sprintf("%s_%s", c, dataframe.Aggregation_SUM))
		if col.Err != nil {
			return nil, fmt.Errorf("read %s sum: %w", c, col.Err)
		}
		for i, v := range col.Float() {
			totals[i].TotalGuests += int64(math.Round(v))
		}
	}

	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Period.Before(totals[j].Period)
	})
	return totals, nil
}

// Years returns the distinct years covered by totals in ascending order.
func Years(totals []NationalGuestTotal) []int {
	seen := make(map[int]bool)
	var years []int
	for _, t := range totals {
		if !seen[t.Period.Year] {
			seen[t.Period.Year] = true
			years = append(years, t.Period.Year)
		}
	}
	sort.Ints(years)
	return years
}
