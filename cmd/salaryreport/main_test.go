package main

import (
	"testing"

	"salarydash/internal/models"
)

func TestSelectYear(t *testing.T) {
	years := []models.YearSummary{
		{WorkYear: 0, TotalJobs: 1, Jobs: []models.JobCount{{Title: "Intern", Count: 1}}},
		{WorkYear: 2021, TotalJobs: 2, Jobs: []models.JobCount{{Title: "Data Scientist", Count: 2}}},
	}

	sel, err := selectYear(years, "")
	if err != nil || sel != nil {
		t.Errorf("empty flag: expected no selection, got %+v %v", sel, err)
	}

	sel, err = selectYear(years, "0")
	if err != nil || sel == nil || sel.WorkYear != 0 || sel.Jobs[0].Title != "Intern" {
		t.Errorf("year 0 should be selectable, got %+v %v", sel, err)
	}

	sel, err = selectYear(years, "2021")
	if err != nil || sel == nil || sel.WorkYear != 2021 {
		t.Errorf("year 2021: got %+v %v", sel, err)
	}

	if _, err := selectYear(years, "1999"); err == nil {
		t.Error("unknown year: expected an error")
	}
	if _, err := selectYear(years, "latest"); err == nil {
		t.Error("non-integer year: expected an error")
	}
}
