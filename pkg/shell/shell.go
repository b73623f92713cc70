// Package shell implements the interactive read-only query loop.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/elonfeng/stayradar/internal/store"
	"github.com/elonfeng/stayradar/pkg/report"
)

const (
	cmdMonthly = "1"
	cmdYearly  = "2"
	cmdExit    = "9"
)

const menu = `
1: monthly guests and holidays
2: yearly guests and holidays
9: exit
or type a SQL query (tables: guests, holidays)
> `

// Querier is the read side of the store the shell needs.
type Querier interface {
	MonthlyReport(ctx context.Context) ([]store.MonthlyReport, error)
	YearlyReport(ctx context.Context) ([]store.YearlyReport, error)
	RawQuery(ctx context.Context, query string) (*store.Table, error)
}

// Shell reads one command per line until exit or end of input.
type Shell struct {
	db       Querier
	denylist *report.Denylist
	in       *bufio.Scanner
	out      io.Writer
}

// New creates a shell reading from in and writing to out.
func New(db Querier, denylist *report.Denylist, in io.Reader, out io.Writer) *Shell {
	if denylist == nil {
		denylist = report.NewDenylist(nil)
	}
	return &Shell{
		db:       db,
		denylist: denylist,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run blocks on input until the operator exits. Report and query failures
// are printed and the loop continues; only a read error is returned.
func (s *Shell) Run(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, menu)

		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())

		switch line {
		case "":
			continue
		case cmdExit:
			return nil
		case cmdMonthly:
			s.monthly(ctx)
		case cmdYearly:
			s.yearly(ctx)
		default:
			s.query(ctx, line)
		}
	}
}

func (s *Shell) monthly(ctx context.Context) {
	rows, err := s.db.MonthlyReport(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	report.WriteMonthly(s.out, rows)
}

func (s *Shell) yearly(ctx context.Context) {
	rows, err := s.db.YearlyReport(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	report.WriteYearly(s.out, rows)
}

func (s *Shell) query(ctx context.Context, q string) {
	if word, blocked := s.denylist.Blocked(q); blocked {
		fmt.Fprintf(s.out, "rejected: queries containing %q are not allowed\n", word)
		return
	}

	table, err := s.db.RawQuery(ctx, q)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	report.WriteTable(s.out, table)
}
