package engine

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

const (
	ColumnWorkYear = "work_year"
	ColumnJobTitle = "job_title"
	ColumnSalary   = "salary_in_usd"

	// rows per arrow record batch
	chunkRows = 4096
)

var requiredColumns = []string{ColumnWorkYear, ColumnJobTitle, ColumnSalary}

var (
	// ErrSource means the file or URL could not be read.
	ErrSource = errors.New("data source unavailable")
	// ErrMissingColumn means the header lacks one of the required columns.
	ErrMissingColumn = errors.New("missing required column")
	// ErrParse means the CSV itself is malformed.
	ErrParse = errors.New("malformed csv")
)

var fetchClient = &http.Client{Timeout: 30 * time.Second}

// LoadColumnar reads source, a local path or an http(s) URL, into a ColumnStore.
func LoadColumnar(ctx context.Context, source string) (*ColumnStore, error) {
	content, err := readSource(ctx, source)
	if err != nil {
		return nil, err
	}
	return ParseColumnar(content)
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		content, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSource, err)
		}
		return content, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrSource, source, resp.StatusCode)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrSource, source, err)
	}
	return content, nil
}

// ParseColumnar parses CSV content with a header row. Only the required
// columns are kept and every value stays a string.
func ParseColumnar(content []byte) (store *ColumnStore, err error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	header, err := readHeader(content)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return newColumnStore(0), nil
	}

	// Every column is a string field, so the builder exists before the first
	// row and no row can fail a type conversion.
	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String}
	}
	schema := arrow.NewSchema(fields, nil)

	// The reader must not take the process down on input it cannot handle.
	defer func() {
		if p := recover(); p != nil {
			store, err = nil, fmt.Errorf("%w: %v", ErrParse, p)
		}
	}()

	r := csv.NewReader(bytes.NewReader(content), schema,
		csv.WithAllocator(memory.NewGoAllocator()),
		csv.WithHeader(true),
		csv.WithLazyQuotes(true),
		csv.WithChunk(chunkRows),
	)
	defer r.Release()

	indices := make([]int, len(requiredColumns))
	for i, name := range requiredColumns {
		indices[i] = schema.FieldIndices(name)[0]
	}

	store = newColumnStore(bytes.Count(content, []byte{'\n'}))
	for r.Next() {
		if err := store.appendRecord(r.Record(), indices); err != nil {
			return nil, err
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return store, nil
}

// readHeader returns nil for empty content.
func readHeader(content []byte) ([]string, error) {
	hr := stdcsv.NewReader(bytes.NewReader(content))
	hr.LazyQuotes = true
	header, err := hr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrParse, err)
	}

	seen := make(map[string]bool, len(header))
	for _, name := range header {
		seen[name] = true
	}
	var missing []string
	for _, name := range requiredColumns {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return header, nil
}

// appendRecord copies the columns at indices (work_year, job_title, salary_in_usd).
func (cs *ColumnStore) appendRecord(rec arrow.Record, indices []int) error {
	cols := make([]*array.String, len(indices))
	for i, idx := range indices {
		col, ok := rec.Column(idx).(*array.String)
		if !ok {
			return fmt.Errorf("%w: column %s is %s, want string", ErrParse, requiredColumns[i], rec.Column(idx).DataType())
		}
		cols[i] = col
	}

	for row := 0; row < int(rec.NumRows()); row++ {
		cs.WorkYears = append(cs.WorkYears, stringAt(cols[0], row))
		cs.JobTitles = append(cs.JobTitles, stringAt(cols[1], row))
		cs.Salaries = append(cs.Salaries, stringAt(cols[2], row))
	}
	return nil
}

// stringAt copies the value out of the arrow buffer, which is released with the record.
func stringAt(col *array.String, i int) string {
	if col.IsNull(i) {
		return ""
	}
	return strings.Clone(col.Value(i))
}
