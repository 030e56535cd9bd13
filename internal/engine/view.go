package engine

import (
	"fmt"
	"sort"
	"strings"

	"salarydash/internal/models"
)

type SortKey string

const (
	SortByYear    SortKey = "work_year"
	SortByJobs    SortKey = "total_jobs"
	SortBySalary  SortKey = "average_salary_usd"
	DefaultSortBy         = SortByYear
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is what the year table header shows as active.
type SortState struct {
	Key       SortKey   `json:"sort"`
	Direction Direction `json:"dir"`
}

func DefaultSort() SortState {
	return SortState{Key: DefaultSortBy, Direction: Asc}
}

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return DefaultSortBy, nil
	case SortByYear, SortByJobs, SortBySalary:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q: must be one of %s, %s, %s", s, SortByYear, SortByJobs, SortBySalary)
}

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return Asc, nil
	case Asc, Desc:
		return d, nil
	}
	return "", fmt.Errorf("unknown sort direction %q: must be asc or desc", s)
}

// Toggle returns the state after clicking the header of column clicked:
// the active ascending column flips to descending, anything else sorts ascending.
func Toggle(current SortState, clicked SortKey) SortState {
	if current.Key == clicked && current.Direction == Asc {
		return SortState{Key: clicked, Direction: Desc}
	}
	return SortState{Key: clicked, Direction: Asc}
}

func sortValue(y models.YearSummary, key SortKey) float64 {
	switch key {
	case SortByJobs:
		return float64(y.TotalJobs)
	case SortBySalary:
		return y.AverageSalaryUSD
	}
	return float64(y.WorkYear)
}

// Sort returns a sorted copy of years. The input slice is left untouched and
// equal keys keep their relative order.
func Sort(years []models.YearSummary, key SortKey, dir Direction) []models.YearSummary {
	out := make([]models.YearSummary, len(years))
	copy(out, years)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := sortValue(out[i], key), sortValue(out[j], key)
		if dir == Desc {
			return a > b
		}
		return a < b
	})
	return out
}

// Select projects the job list of one year for the detail table.
func Select(years []models.YearSummary, year int) (models.Selection, bool) {
	for _, y := range years {
		if y.WorkYear == year {
			return models.Selection{WorkYear: y.WorkYear, Jobs: y.Jobs}, true
		}
	}
	return models.Selection{}, false
}

// Chart builds the "Number of Jobs" line series in the order of years.
func Chart(years []models.YearSummary) models.ChartData {
	data := models.ChartData{
		Title:      "Number of Jobs",
		Categories: make([]string, 0, len(years)),
		Series:     []models.ChartSeries{{Name: "Number of Jobs", Data: make([]int, 0, len(years))}},
	}
	if len(years) == 0 {
		return data
	}

	lo, hi := years[0].WorkYear, years[0].WorkYear
	for _, y := range years {
		data.Categories = append(data.Categories, fmt.Sprintf("%d", y.WorkYear))
		data.Series[0].Data = append(data.Series[0].Data, y.TotalJobs)
		lo, hi = min(lo, y.WorkYear), max(hi, y.WorkYear)
	}
	data.Title = fmt.Sprintf("Number of Jobs from %d to %d", lo, hi)
	return data
}
