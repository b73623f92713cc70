// Package report renders stored reports and guards ad-hoc queries.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/elonfeng/stayradar/internal/store"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteMonthly prints one line per month.
func WriteMonthly(w io.Writer, rows []store.MonthlyReport) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "YEAR_MONTH\tTOTAL_GUESTS\tHOLIDAY_CNT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", r.YearMonth, r.TotalGuests, r.HolidayCnt)
	}
	return tw.Flush()
}

// WriteYearly prints one line per year.
func WriteYearly(w io.Writer, rows []store.YearlyReport) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "YEAR\tTOTAL_GUESTS\tHOLIDAY_CNT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%d\n", r.Year, r.TotalGuests, r.HolidayCnt)
	}
	return tw.Flush()
}

// WriteTable prints a raw query result followed by its row count.
func WriteTable(w io.Writer, t *store.Table) error {
	tw := newTabWriter(w)
	for i, c := range t.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)

	for _, row := range t.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v == nil {
				fmt.Fprint(tw, "NULL")
				continue
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(t.Rows))
	return err
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
