package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/elonfeng/stayradar/internal/config"
	"github.com/elonfeng/stayradar/internal/store"
	"github.com/elonfeng/stayradar/pkg/aggregate"
	"github.com/elonfeng/stayradar/pkg/report"
	"github.com/elonfeng/stayradar/pkg/server"
	"github.com/elonfeng/stayradar/pkg/shell"
	"github.com/elonfeng/stayradar/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv("STAYRADAR_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path, ".env")
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return db, nil
}

func runDefault() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := runLoad(ctx, cfg, db); err != nil {
		return err
	}

	denylist := report.NewDenylist(cfg.Shell.ExtraDeniedWords)
	return shell.New(db, denylist, os.Stdin, os.Stdout).Run(ctx)
}

func runLoadOnly() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return runLoad(context.Background(), cfg, db)
}

// runLoad fetches both datasets, aggregates them and replaces the stored
// tables. Any fetch failure aborts before the store is touched.
func runLoad(ctx context.Context, cfg *config.Config, db store.Store) error {
	guests := source.NewGuests(cfg.RESAS.BaseURL, cfg.RESAS.APIKey, cfg.RESAS.Concurrency, cfg.RESAS.ParseTimeout())
	holidays := source.NewHolidays(cfg.Holidays.BaseURL, cfg.Holidays.Country, cfg.Holidays.ParseTimeout())

	fmt.Fprintf(os.Stderr, "fetching guests for %d prefectures from %s...\n", source.PrefectureCount, guests.Name())
	records, err := guests.FetchAll(ctx)
	if err != nil {
		logFetchError(err)
		return fmt.Errorf("fetch guests: %w", err)
	}
	fmt.Fprintf(os.Stderr, "  fetched %d rows\n", len(records))

	totals, err := aggregate.NationalTotals(records)
	if err != nil {
		return fmt.Errorf("aggregate guests: %w", err)
	}
	years := aggregate.Years(totals)
	fmt.Fprintf(os.Stderr, "  %d months across %d years\n", len(totals), len(years))

	fmt.Fprintf(os.Stderr, "fetching holidays from %s...\n", holidays.Name())
	hols, err := holidays.FetchYears(ctx, years)
	if err != nil {
		logFetchError(err)
		return fmt.Errorf("fetch holidays: %w", err)
	}
	fmt.Fprintf(os.Stderr, "  fetched %d holidays\n", len(hols))

	if err := db.Load(ctx, totals, hols); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	fmt.Fprintf(os.Stderr, "stored %d months and %d holidays\n", len(totals), len(hols))
	return nil
}

func logFetchError(err error) {
	var upErr *source.UpstreamError
	var shapeErr *source.ShapeError
	switch {
	case errors.As(err, &upErr):
		fmt.Fprintf(os.Stderr, "  upstream error from %s (%s): %v\n", upErr.Source, upErr.URL, upErr.Err)
	case errors.As(err, &shapeErr):
		fmt.Fprintf(os.Stderr, "  unexpected response from %s: %s\n", shapeErr.Source, shapeErr.Reason)
	default:
		fmt.Fprintf(os.Stderr, "  error: %v\n", err)
	}
}

func runShell() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	denylist := report.NewDenylist(cfg.Shell.ExtraDeniedWords)
	return shell.New(db, denylist, os.Stdin, os.Stdout).Run(context.Background())
}

func runReport(kind string, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	switch kind {
	case "monthly":
		rows, err := db.MonthlyReport(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return report.WriteJSON(os.Stdout, rows)
		}
		if len(rows) == 0 {
			fmt.Println("no data found (try loading first: stayradar load)")
			return nil
		}
		return report.WriteMonthly(os.Stdout, rows)
	case "yearly":
		rows, err := db.YearlyReport(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return report.WriteJSON(os.Stdout, rows)
		}
		if len(rows) == 0 {
			fmt.Println("no data found (try loading first: stayradar load)")
			return nil
		}
		return report.WriteYearly(os.Stdout, rows)
	}
	return fmt.Errorf("unknown report %q", kind)
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := server.New(db, report.NewDenylist(cfg.Shell.ExtraDeniedWords), port)
	return srv.ListenAndServe()
}
