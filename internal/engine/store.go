package engine

import "salarydash/internal/models"

// ColumnStore holds the three source columns the dashboard needs, one flat
// slice per column. Values are kept as raw text; the aggregator parses them.
type ColumnStore struct {
	WorkYears []string
	JobTitles []string
	Salaries  []string
}

func newColumnStore(capacity int) *ColumnStore {
	return &ColumnStore{
		WorkYears: make([]string, 0, capacity),
		JobTitles: make([]string, 0, capacity),
		Salaries:  make([]string, 0, capacity),
	}
}

func (cs *ColumnStore) Len() int { return len(cs.WorkYears) }

// Records converts the columns back to row form.
func (cs *ColumnStore) Records() []models.RawRecord {
	rows := make([]models.RawRecord, cs.Len())
	for i := range rows {
		rows[i] = models.RawRecord{
			WorkYear:    cs.WorkYears[i],
			JobTitle:    cs.JobTitles[i],
			SalaryInUSD: cs.Salaries[i],
		}
	}
	return rows
}

// Aggregate runs the year aggregation over the stored rows.
func (cs *ColumnStore) Aggregate(opts Options) (models.Aggregation, error) {
	return Aggregate(cs.Records(), opts)
}
