package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"salarydash/internal/models"
)

const salariesCSV = `work_year,experience_level,employment_type,job_title,salary,salary_currency,salary_in_usd,employee_residence
2020,MI,FT,Data Scientist,70000,EUR,79833,DE
2021,SE,FT,"Machine Learning Engineer, Senior",150000,USD,150000,US
2020,EN,PT,Data Scientist,20000,USD,20000,IN
2022,SE,FT,Data Engineer,n/a,USD,abc,US
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salaries.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadColumnar(t *testing.T) {
	store, err := LoadColumnar(context.Background(), writeTemp(t, salariesCSV))
	if err != nil {
		t.Fatal(err)
	}

	// Expect 4 rows; validity is decided later by the aggregator
	if store.Len() != 4 {
		t.Fatalf("Expected 4 rows, got %d", store.Len())
	}
	if store.WorkYears[0] != "2020" || store.JobTitles[0] != "Data Scientist" || store.Salaries[0] != "79833" {
		t.Errorf("Row 0 mismatch: %v", store.Records()[0])
	}
	if store.JobTitles[1] != "Machine Learning Engineer, Senior" {
		t.Errorf("Quoted title not preserved: %q", store.JobTitles[1])
	}
	if store.Salaries[3] != "abc" {
		t.Errorf("Row 3 salary should stay raw text, got %q", store.Salaries[3])
	}

	data, err := store.Aggregate(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Years) != 2 || data.ValidRows != 3 || data.SkippedCount != 1 {
		t.Errorf("Unexpected aggregation %+v", data)
	}
}

func TestLoadColumnarBOMAndColumnOrder(t *testing.T) {
	content := "\xef\xbb\xbfsalary_in_usd,job_title,work_year\n100,A,2020\n"
	store, err := LoadColumnar(context.Background(), writeTemp(t, content))
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 || store.WorkYears[0] != "2020" || store.Salaries[0] != "100" {
		t.Errorf("Unexpected store %+v", store)
	}
}

func TestParseColumnarShapes(t *testing.T) {
	const header = "work_year,job_title,salary_in_usd\n"
	tests := []struct {
		name    string
		content string
		want    []models.RawRecord
		wantErr error
	}{
		{
			name:    "header only",
			content: header,
			want:    []models.RawRecord{},
		},
		{
			name:    "header only without newline",
			content: "work_year,job_title,salary_in_usd",
			want:    []models.RawRecord{},
		},
		{
			name:    "ragged row",
			content: header + "2020,A\n",
			wantErr: ErrParse,
		},
		{
			name:    "ragged row after valid rows",
			content: header + "2020,A,1\n2021,B\n",
			wantErr: ErrParse,
		},
		{
			name:    "quoted escape",
			content: header + "2020,\"Data \"\"Lead\"\" Scientist\",100\n",
			want:    []models.RawRecord{{WorkYear: "2020", JobTitle: `Data "Lead" Scientist`, SalaryInUSD: "100"}},
		},
		{
			name:    "blank line between rows",
			content: header + "2020,A,1\n\n2021,B,2\n",
			want: []models.RawRecord{
				{WorkYear: "2020", JobTitle: "A", SalaryInUSD: "1"},
				{WorkYear: "2021", JobTitle: "B", SalaryInUSD: "2"},
			},
		},
		{
			// null tokens are not special for string columns
			name:    "NULL and empty values stay literal",
			content: header + "2020,NULL,\n",
			want:    []models.RawRecord{{WorkYear: "2020", JobTitle: "NULL", SalaryInUSD: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := ParseColumnar([]byte(tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := store.Records(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadSnapshotHeaderOnly(t *testing.T) {
	s := LoadSnapshot(context.Background(), writeTemp(t, "work_year,job_title,salary_in_usd\n"), Options{})
	if s.State != models.StateReady || len(s.Aggregation.Years) != 0 {
		t.Errorf("header-only file should be an empty ready load, got %+v", s)
	}

	s = LoadSnapshot(context.Background(), writeTemp(t, "work_year,job_title,salary_in_usd\n2020,A\n"), Options{})
	if s.State != models.StateFailed || !errors.Is(s.Err, ErrParse) {
		t.Errorf("ragged file should be a failed load, got %+v", s)
	}
}

func TestLoadColumnarErrors(t *testing.T) {
	_, err := LoadColumnar(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, ErrSource) {
		t.Errorf("missing file: expected ErrSource, got %v", err)
	}

	_, err = LoadColumnar(context.Background(), writeTemp(t, "work_year,title,salary_in_usd\n2020,A,1\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("bad header: expected ErrMissingColumn, got %v", err)
	}

	_, err = LoadColumnar(context.Background(), writeTemp(t, "  \n"))
	if err == nil {
		t.Error("blank header: expected an error")
	}
}

func TestLoadColumnarHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/salaries.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(salariesCSV))
	}))
	defer srv.Close()

	store, err := LoadColumnar(context.Background(), srv.URL+"/salaries.csv")
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 4 {
		t.Errorf("Expected 4 rows, got %d", store.Len())
	}

	_, err = LoadColumnar(context.Background(), srv.URL+"/nope.csv")
	if !errors.Is(err, ErrSource) {
		t.Errorf("404: expected ErrSource, got %v", err)
	}
}
