// Package export serializes dataset views for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

const (
	FileName      = "datos_filtrados.csv"
	MediaType     = "text/csv"
	XLSXFileName  = "datos_filtrados.xlsx"
	XLSXMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx"; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q (use csv or xlsx)", s)
}

// FileName returns the download name for f.
func (f Format) FileName() string {
	if f == FormatXLSX {
		return XLSXFileName
	}
	return FileName
}

// MediaType returns the content type for f.
func (f Format) MediaType() string {
	if f == FormatXLSX {
		return XLSXMediaType
	}
	return MediaType
}

// Encode serializes ds in format f.
func Encode(ds *dataset.Dataset, f Format) ([]byte, error) {
	switch f {
	case FormatCSV, "":
		return CSV(ds)
	case FormatXLSX:
		return XLSX(ds)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

func header(ds *dataset.Dataset) []string {
	cols := ds.Columns()
	out := make([]string, 0, len(cols)+1)
	out = append(out, ds.TimeColumn())
	for _, c := range cols {
		out = append(out, string(c))
	}
	return out
}

// CSV writes the time column and the canonical variables of ds. Numbers keep
// full precision and missing readings become empty cells. An empty view
// yields the header line only.
func CSV(ds *dataset.Dataset) ([]byte, error) {
	if ds == nil {
		return nil, fmt.Errorf("export csv: nil dataset")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header(ds)); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	cols := ds.Columns()
	row := make([]string, len(cols)+1)
	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		row[0] = rec.Time.Format(time.RFC3339Nano)
		for j, c := range cols {
			row[j+1] = rec.Get(c).String()
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("export csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX writes the same columns as CSV into a single worksheet with the
// time column as date cells.
func XLSX(ds *dataset.Dataset) ([]byte, error) {
	if ds == nil {
		return nil, fmt.Errorf("export xlsx: nil dataset")
	}
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	for i, h := range header(ds) {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("export xlsx: %w", err)
		}
	}
	cols := ds.Columns()
	for r := 0; r < ds.Len(); r++ {
		rec := ds.At(r)
		rowIdx := r + 2
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx)
		if err := f.SetCellValue(sheet, cell, rec.Time); err != nil {
			return nil, fmt.Errorf("export xlsx: %w", err)
		}
		for c, v := range cols {
			x, ok := rec.Get(v).Get()
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+2, rowIdx)
			if err := f.SetCellValue(sheet, cell, x); err != nil {
				return nil, fmt.Errorf("export xlsx: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
