package engine

import (
	"errors"
	"fmt"
	"strings"

	"salarydash/internal/models"
)

// ErrInvalidRow is returned by Aggregate under SkipFail.
var ErrInvalidRow = errors.New("invalid row")

// SkipPolicy decides what happens to rows whose year or salary does not parse.
type SkipPolicy int

const (
	// SkipCount drops invalid rows and only counts them.
	SkipCount SkipPolicy = iota
	// SkipRecord drops invalid rows and keeps a description of each.
	SkipRecord
	// SkipFail stops at the first invalid row.
	SkipFail
)

func (p SkipPolicy) String() string {
	switch p {
	case SkipCount:
		return "count"
	case SkipRecord:
		return "record"
	case SkipFail:
		return "fail"
	}
	return fmt.Sprintf("SkipPolicy(%d)", int(p))
}

func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "count":
		return SkipCount, nil
	case "record":
		return SkipRecord, nil
	case "fail":
		return SkipFail, nil
	}
	return SkipCount, fmt.Errorf("unknown skip policy %q: must be one of count, record, fail", s)
}

type Options struct {
	Policy SkipPolicy
	// MaxRecorded caps the Skipped list under SkipRecord. Zero means no cap.
	MaxRecorded int
}

// yearBuilder accumulates one year. salarySum becomes the mean in finalize.
type yearBuilder struct {
	year      int
	total     int
	salarySum float64
	jobs      []models.JobCount
	jobIndex  map[string]int
}

func (b *yearBuilder) add(title string, salary float64) {
	b.total++
	b.salarySum += salary

	if idx, ok := b.jobIndex[title]; ok {
		b.jobs[idx].Count++
		return
	}
	b.jobIndex[title] = len(b.jobs)
	b.jobs = append(b.jobs, models.JobCount{Title: title, Count: 1})
}

func (b *yearBuilder) finalize() models.YearSummary {
	return models.YearSummary{
		WorkYear:         b.year,
		TotalJobs:        b.total,
		AverageSalaryUSD: b.salarySum / float64(b.total),
		Jobs:             b.jobs,
	}
}

// Aggregate groups rows by work year in a single pass. Years come out in the
// order they were first seen and titles within a year likewise. An error is
// only possible under SkipFail.
func Aggregate(rows []models.RawRecord, opts Options) (models.Aggregation, error) {
	builders := make(map[int]*yearBuilder)
	order := make([]int, 0)

	result := models.Aggregation{}

	for i, row := range rows {
		year, salary, reason := parseRow(row)
		if reason != "" {
			if opts.Policy == SkipFail {
				return models.Aggregation{}, fmt.Errorf("%w: row %d: %s", ErrInvalidRow, i+1, reason)
			}
			result.SkippedCount++
			if opts.Policy == SkipRecord && (opts.MaxRecorded <= 0 || len(result.Skipped) < opts.MaxRecorded) {
				result.Skipped = append(result.Skipped, models.SkippedRow{
					Row:         i + 1,
					WorkYear:    row.WorkYear,
					SalaryInUSD: row.SalaryInUSD,
					Reason:      reason,
				})
			}
			continue
		}

		b, ok := builders[year]
		if !ok {
			b = &yearBuilder{year: year, jobIndex: make(map[string]int)}
			builders[year] = b
			order = append(order, year)
		}
		b.add(row.JobTitle, salary)
		result.ValidRows++
	}

	result.Years = make([]models.YearSummary, 0, len(order))
	for _, y := range order {
		result.Years = append(result.Years, builders[y].finalize())
	}
	return result, nil
}

// parseRow returns a non-empty reason when the row must be skipped.
func parseRow(row models.RawRecord) (int, float64, string) {
	year, okYear := prefixInt(row.WorkYear)
	salary, okSalary := prefixFloat(row.SalaryInUSD)

	switch {
	case !okYear && !okSalary:
		return 0, 0, "unparsable work_year and salary_in_usd"
	case !okYear:
		return 0, 0, "unparsable work_year"
	case !okSalary:
		return 0, 0, "unparsable salary_in_usd"
	}
	return year, salary, ""
}
