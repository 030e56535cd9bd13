package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"salarydash/internal/models"
)

// FormatUSD renders a salary with two decimals and thousands separators.
func FormatUSD(v float64) string {
	// CommafWithDigits truncates and drops trailing zeros, so round first and pad after.
	s := humanize.CommafWithDigits(math.Round(v*100)/100, 2)
	switch dot := strings.LastIndexByte(s, '.'); {
	case dot == -1:
		s += ".00"
	case len(s)-dot == 2:
		s += "0"
	}
	return "$" + s
}

// YearRows builds the main table, header first.
func YearRows(years []models.YearSummary) [][]string {
	rows := [][]string{{"Year", "Total Jobs", "Average Salary (USD)"}}
	for _, y := range years {
		rows = append(rows, []string{
			strconv.Itoa(y.WorkYear),
			humanize.Comma(int64(y.TotalJobs)),
			FormatUSD(y.AverageSalaryUSD),
		})
	}
	return rows
}

// JobRows builds the per-year detail table, header first.
func JobRows(sel models.Selection) [][]string {
	rows := [][]string{{"Job Title", "Count"}}
	for _, j := range sel.Jobs {
		rows = append(rows, []string{j.Title, humanize.Comma(int64(j.Count))})
	}
	return rows
}

// Render writes the year table, the optional detail table and a summary line to w.
func Render(w io.Writer, years []models.YearSummary, sel *models.Selection, agg models.Aggregation) error {
	if err := renderTable(w, "Main Table", YearRows(years)); err != nil {
		return err
	}
	if sel != nil {
		if err := renderTable(w, fmt.Sprintf("Jobs per Year (%d)", sel.WorkYear), JobRows(*sel)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%s valid rows, %s skipped\n",
		humanize.Comma(int64(agg.ValidRows)), humanize.Comma(int64(agg.SkippedCount)))
	return err
}

func renderTable(w io.Writer, title string, rows [][]string) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(rows).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, pterm.DefaultSection.Sprint(title), table, "\n")
	return err
}
