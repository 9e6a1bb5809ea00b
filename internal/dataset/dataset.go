package dataset

import (
	"strings"
	"time"
)

// Variable names one of the two recognized sensor readings.
type Variable string

const (
	Temperature Variable = "temperature"
	Humidity    Variable = "humedad"
)

// Variables lists the recognized variables in canonical order.
var Variables = []Variable{Temperature, Humidity}

// ParseVariable resolves a canonical variable name.
func ParseVariable(s string) (Variable, error) {
	switch Variable(strings.TrimSpace(s)) {
	case Temperature:
		return Temperature, nil
	case Humidity:
		return Humidity, nil
	}
	return "", &InvalidVariableError{Name: s}
}

// Record is one normalized row.
type Record struct {
	Time        time.Time `json:"time"`
	Temperature Value     `json:"temperature"`
	Humidity    Value     `json:"humedad"`
	// Extra holds pass-through cells aligned with Dataset.Extra.
	Extra []string `json:"extra,omitempty"`
}

// Get returns the reading for v. Unknown variables yield None.
func (r Record) Get(v Variable) Value {
	switch v {
	case Temperature:
		return r.Temperature
	case Humidity:
		return r.Humidity
	}
	return None()
}

// Dataset is an immutable, order-preserving collection of records keyed by time.
// Timestamps may repeat or go backwards.
type Dataset struct {
	id         string
	name       string
	timeColumn string
	columns    []Variable
	extra      []string
	records    []Record
}

// ID identifies the ingestion that produced the dataset. Views keep their source ID.
func (d *Dataset) ID() string { return d.id }

// Name is the uploaded file name, or a view label.
func (d *Dataset) Name() string { return d.name }

// TimeColumn is the header label of the timestamp column.
func (d *Dataset) TimeColumn() string { return d.timeColumn }

// Columns returns the canonical variables present in the header, in source order.
func (d *Dataset) Columns() []Variable {
	out := make([]Variable, len(d.columns))
	copy(out, d.columns)
	return out
}

// Extra returns pass-through column labels.
func (d *Dataset) Extra() []string {
	out := make([]string, len(d.extra))
	copy(out, d.extra)
	return out
}

// Has reports whether v was present in the header.
func (d *Dataset) Has(v Variable) bool {
	for _, c := range d.columns {
		if c == v {
			return true
		}
	}
	return false
}

func (d *Dataset) Len() int { return len(d.records) }

// At returns the i-th record.
func (d *Dataset) At(i int) Record { return d.records[i] }

// Records returns a copy of all records.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Values collects the present readings of v in record order.
func (d *Dataset) Values(v Variable) []float64 {
	out := make([]float64, 0, len(d.records))
	for _, r := range d.records {
		if x, ok := r.Get(v).Get(); ok {
			out = append(out, x)
		}
	}
	return out
}

// View derives a dataset with the same schema and identity holding the
// records selected by keep.
func (d *Dataset) View(label string, keep func(Record) bool) *Dataset {
	out := &Dataset{
		id:         d.id,
		name:       label,
		timeColumn: d.timeColumn,
		columns:    d.columns,
		extra:      d.extra,
	}
	for _, r := range d.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

// New assembles a dataset from already-normalized records. It is used by
// tests and by callers that build data programmatically.
func New(id, name string, columns []Variable, records []Record) *Dataset {
	cols := make([]Variable, len(columns))
	copy(cols, columns)
	recs := make([]Record, len(records))
	copy(recs, records)
	return &Dataset{
		id:         id,
		name:       name,
		timeColumn: DefaultTimeColumn,
		columns:    cols,
		records:    recs,
	}
}
