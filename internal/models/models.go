package models

import "time"

// RawRecord is one source row before any numeric parsing.
type RawRecord struct {
	WorkYear    string `json:"work_year"`
	JobTitle    string `json:"job_title"`
	SalaryInUSD string `json:"salary_in_usd"`
}

type JobCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

type YearSummary struct {
	WorkYear         int        `json:"work_year"`
	TotalJobs        int        `json:"total_jobs"`
	AverageSalaryUSD float64    `json:"average_salary_usd"`
	Jobs             []JobCount `json:"jobs"`
}

// SkippedRow describes a row the aggregator dropped. Row is 1-based.
type SkippedRow struct {
	Row         int    `json:"row"`
	WorkYear    string `json:"work_year"`
	SalaryInUSD string `json:"salary_in_usd"`
	Reason      string `json:"reason"`
}

type Aggregation struct {
	Years        []YearSummary `json:"years"`
	ValidRows    int           `json:"valid_rows"`
	SkippedCount int           `json:"skipped_count"`
	Skipped      []SkippedRow  `json:"skipped,omitempty"`
}

type Selection struct {
	WorkYear int        `json:"work_year"`
	Jobs     []JobCount `json:"jobs"`
}

type LoadState string

const (
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateFailed  LoadState = "failed"
)

// Snapshot is the immutable result of one load. Handlers never modify it.
type Snapshot struct {
	State       LoadState
	Source      string
	Err         error
	LoadedAt    time.Time
	Duration    time.Duration
	Aggregation Aggregation
}

type Status struct {
	State       LoadState `json:"state"`
	Source      string    `json:"source"`
	Error       string    `json:"error,omitempty"`
	LoadedAt    string    `json:"loaded_at,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	Years       int       `json:"years"`
	ValidRows   int       `json:"valid_rows"`
	SkippedRows int       `json:"skipped_rows"`
}

type ChartSeries struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}

type ChartData struct {
	Title      string        `json:"title"`
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
}
