package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"salarydash/internal/config"
	"salarydash/internal/engine"
	"salarydash/internal/log"
	"salarydash/internal/models"
	"salarydash/internal/report"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fail(log.New(log.DefaultConfig()).WithComponent(log.ComponentReport), err)
	}

	data := flag.String("data", cfg.DataSource, "CSV file path or http(s) URL")
	sortKey := flag.String("sort", string(engine.DefaultSortBy), "sort column: work_year, total_jobs, average_salary_usd")
	dir := flag.String("dir", string(engine.Asc), "sort direction: asc or desc")
	year := flag.String("year", "", "also print the job titles of this year")
	skip := flag.String("skip", cfg.SkipPolicy, "invalid row policy: count, record, fail")
	flag.Parse()

	logger := log.New(cfg.LoggerConfig()).WithComponent(log.ComponentReport)

	key, err := engine.ParseSortKey(*sortKey)
	if err != nil {
		fail(logger, err)
	}
	direction, err := engine.ParseDirection(*dir)
	if err != nil {
		fail(logger, err)
	}
	policy, err := engine.ParseSkipPolicy(*skip)
	if err != nil {
		fail(logger, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LoadTimeout)
	defer cancel()

	snap := engine.LoadSnapshot(ctx, *data, engine.Options{Policy: policy, MaxRecorded: cfg.MaxSkippedRecorded})
	if snap.State == models.StateFailed {
		fail(logger, snap.Err)
	}
	agg := snap.Aggregation

	sel, err := selectYear(agg.Years, *year)
	if err != nil {
		fail(logger, err)
	}

	if err := report.Render(os.Stdout, engine.Sort(agg.Years, key, direction), sel, agg); err != nil {
		fail(logger, err)
	}
	for _, s := range agg.Skipped {
		logger.Warn("Skipped row", "row", s.Row, "work_year", s.WorkYear, "salary_in_usd", s.SalaryInUSD, "reason", s.Reason)
	}
}

// selectYear resolves the -year flag. An empty value selects nothing; any
// integer, 0 included, must name a year present in the table.
func selectYear(years []models.YearSummary, raw string) (*models.Selection, error) {
	if raw == "" {
		return nil, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid -year %q: must be an integer", raw)
	}
	s, ok := engine.Select(years, y)
	if !ok {
		return nil, fmt.Errorf("no data for year %d", y)
	}
	return &s, nil
}

func fail(logger *log.Logger, err error) {
	logger.Error("Report failed", log.FieldError, err)
	os.Exit(1)
}
