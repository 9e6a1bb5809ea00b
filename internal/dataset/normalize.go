package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeColumn is the timestamp header written by the sensor export.
const DefaultTimeColumn = "Time"

// ColumnAliases maps legacy machine-generated labels to canonical variables.
var ColumnAliases = map[string]Variable{
	`temperatura {device="ESP32", name="Sensor 1"}`: Temperature,
	`humedad {device="ESP32", name="Sensor 1"}`:     Humidity,
}

// Options controls normalization.
type Options struct {
	// Delimiter for CSV input. If 0, ',' is used.
	Delimiter rune
	// Location applied to timestamps without a zone. Nil means UTC.
	Location *time.Location
	// TimeColumn overrides the timestamp header label.
	TimeColumn string
}

// DefaultOptions returns the options matching the sensor export format.
func DefaultOptions() Options {
	return Options{
		Delimiter:  ',',
		Location:   time.UTC,
		TimeColumn: DefaultTimeColumn,
	}
}

// Result is the all-or-nothing outcome of ingesting one file: either a
// Dataset or an IngestError, never both.
type Result struct {
	Dataset *Dataset
	Err     *IngestError
}

// OK reports whether ingestion produced a dataset.
func (r Result) OK() bool { return r.Err == nil && r.Dataset != nil }

// Unwrap converts the result into Go's (value, error) form.
func (r Result) Unwrap() (*Dataset, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Dataset == nil {
		return nil, &IngestError{Stage: StageStructure, Err: fmt.Errorf("no dataset produced")}
	}
	return r.Dataset, nil
}

// Ingest parses CSV text from r and normalizes it.
func Ingest(name string, r io.Reader, opt Options) Result {
	rows, err := ReadCSV(r, opt.Delimiter)
	if err != nil {
		return Result{Err: &IngestError{Stage: StageRead, Err: err}}
	}
	return FromRows(name, rows, opt)
}

// FromRows normalizes rows already extracted by a source reader.
func FromRows(name string, rows [][]string, opt Options) Result {
	ds, ierr := normalize(name, rows, opt)
	if ierr != nil {
		return Result{Err: ierr}
	}
	return Result{Dataset: ds}
}

// ReadCSV reads every record of a delimited text stream. Ragged rows are an error.
func ReadCSV(r io.Reader, delim rune) ([][]string, error) {
	cr := csv.NewReader(r)
	if delim != 0 {
		cr.Comma = delim
	}
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// Normalize builds a Dataset from raw rows whose first row is the header.
// Any fault fails the whole input.
func Normalize(name string, rows [][]string, opt Options) (*Dataset, error) {
	ds, err := normalize(name, rows, opt)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func normalize(name string, rows [][]string, opt Options) (*Dataset, *IngestError) {
	if len(rows) == 0 {
		return nil, ingestErr(StageHeader, "empty file: no header row")
	}
	timeCol := opt.TimeColumn
	if timeCol == "" {
		timeCol = DefaultTimeColumn
	}
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}

	header := rows[0]
	ncol := len(header)
	timeIdx := -1
	varIdx := map[Variable]int{}
	var columns []Variable
	var extra []string
	var extraIdx []int
	for i, raw := range header {
		h := strings.TrimSpace(raw)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == timeCol {
			if timeIdx >= 0 {
				return nil, ingestErr(StageStructure, "duplicate %q column", timeCol)
			}
			timeIdx = i
			continue
		}
		if v, ok := canonical(h); ok {
			if _, dup := varIdx[v]; dup {
				return nil, ingestErr(StageStructure, "duplicate %q column after renaming", v)
			}
			varIdx[v] = i
			columns = append(columns, v)
			continue
		}
		extra = append(extra, h)
		extraIdx = append(extraIdx, i)
	}
	if timeIdx < 0 {
		return nil, ingestErr(StageHeader, "missing %q column", timeCol)
	}

	records := make([]Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if len(row) > ncol {
			return nil, ingestErr(StageStructure, "row %d has %d fields, header has %d", line, len(row), ncol)
		}
		if len(row) < ncol {
			// spreadsheet readers drop trailing empty cells
			tmp := make([]string, ncol)
			copy(tmp, row)
			row = tmp
		}
		ts, ok := ParseTime(row[timeIdx], loc)
		if !ok {
			return nil, ingestErr(StageTime, "parse %s column at row %d: cannot parse %q as a date/time", timeCol, line, row[timeIdx])
		}
		rec := Record{Time: ts}
		if i, ok := varIdx[Temperature]; ok {
			rec.Temperature = ParseValue(row[i])
		}
		if i, ok := varIdx[Humidity]; ok {
			rec.Humidity = ParseValue(row[i])
		}
		if len(extraIdx) > 0 {
			rec.Extra = make([]string, len(extraIdx))
			for j, i := range extraIdx {
				rec.Extra[j] = row[i]
			}
		}
		records = append(records, rec)
	}

	return &Dataset{
		id:         uuid.NewString(),
		name:       name,
		timeColumn: timeCol,
		columns:    columns,
		extra:      extra,
		records:    records,
	}, nil
}

func canonical(h string) (Variable, bool) {
	if v, ok := ColumnAliases[h]; ok {
		return v, true
	}
	switch Variable(h) {
	case Temperature, Humidity:
		return Variable(h), true
	}
	return "", false
}

var missingTokens = map[string]struct{}{
	"": {}, "-": {}, "nan": {}, "null": {}, "none": {}, "na": {}, "n/a": {},
}

// ParseValue coerces a cell to a reading. Cells that do not hold a finite
// number yield None.
func ParseValue(s string) Value {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if _, ok := missingTokens[strings.ToLower(raw)]; ok {
		return None()
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// decimal comma, e.g. "21,5"
		if strings.Count(raw, ",") != 1 || strings.Contains(raw, ".") {
			return None()
		}
		if f, err = strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64); err != nil {
			return None()
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return None()
	}
	return Some(f)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	time.UnixDate,
	"20060102T150405",
	"20060102",
}

// minEpochDigits keeps short digit runs such as years from reading as epochs.
const minEpochDigits = 9

// ParseTime parses a timestamp cell. Values without a zone are read in loc.
// All-digit values that match no layout are Unix epochs when they have at least
// 9 digits: seconds, or milliseconds from 12 digits up.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, l := range timeLayouts {
		if t, err := time.ParseInLocation(l, v, loc); err == nil {
			return t, true
		}
	}
	if len(v) >= minEpochDigits && isDigits(v) {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		if len(v) >= 12 {
			return time.UnixMilli(n).In(loc), true
		}
		return time.Unix(n, 0).In(loc), true
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
