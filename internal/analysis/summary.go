package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

// Summary is the fixed descriptive summary of one variable. Values are full
// precision; rounding happens only when rendering.
type Summary struct {
	Variable dataset.Variable `json:"variable" yaml:"variable"`
	Count    int              `json:"count" yaml:"count"`
	Mean     dataset.Value    `json:"mean" yaml:"mean"`
	Std      dataset.Value    `json:"std" yaml:"std"`
	Min      dataset.Value    `json:"min" yaml:"min"`
	P25      dataset.Value    `json:"p25" yaml:"p25"`
	P50      dataset.Value    `json:"p50" yaml:"p50"`
	P75      dataset.Value    `json:"p75" yaml:"p75"`
	Max      dataset.Value    `json:"max" yaml:"max"`
}

// Summarize computes count, mean, sample std, min, quartiles and max of v
// over the present readings in ds.
func Summarize(ds *dataset.Dataset, v dataset.Variable) (Summary, error) {
	if _, err := dataset.ParseVariable(string(v)); err != nil {
		return Summary{}, err
	}
	if ds == nil {
		return Summary{}, fmt.Errorf("summarize %s: nil dataset", v)
	}
	vals := ds.Values(v)
	s := Summary{Variable: v, Count: len(vals)}
	if len(vals) == 0 {
		return s, nil
	}

	lo, err := stats.Min(vals)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %s: min: %w", v, err)
	}
	hi, err := stats.Max(vals)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize %s: max: %w", v, err)
	}
	s.Min = dataset.Some(lo)
	s.Max = dataset.Some(hi)

	mean, std := meanStdDev(vals, math.Max(math.Abs(lo), math.Abs(hi)))
	s.Mean = dataset.Finite(mean)
	if len(vals) >= 2 {
		s.Std = dataset.Finite(std)
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	s.P25 = dataset.Some(quantile(sorted, 0.25))
	s.P50 = dataset.Some(quantile(sorted, 0.50))
	s.P75 = dataset.Some(quantile(sorted, 0.75))
	return s, nil
}

// meanStdDev falls back to values scaled by scale when the sums overflow.
func meanStdDev(vals []float64, scale float64) (mean, std float64) {
	mean, std = stat.MeanStdDev(vals, nil)
	if dataset.Finite(mean).Valid() && dataset.Finite(std).Valid() || scale <= 1 {
		return mean, std
	}
	scaled := make([]float64, len(vals))
	for i, x := range vals {
		scaled[i] = x / scale
	}
	mean, std = stat.MeanStdDev(scaled, nil)
	return mean * scale, std * scale
}

// SummarizeAll summarizes every canonical variable present in ds.
func SummarizeAll(ds *dataset.Dataset) (map[dataset.Variable]Summary, error) {
	out := make(map[dataset.Variable]Summary, 2)
	for _, v := range ds.Columns() {
		s, err := Summarize(ds, v)
		if err != nil {
			return nil, err
		}
		out[v] = s
	}
	return out, nil
}

// Field pairs a summary label with its value, in display order.
type Field struct {
	Name  string
	Value dataset.Value
}

// Fields returns the summary in the order count, mean, std, min, 25%, 50%, 75%, max.
func (s Summary) Fields() []Field {
	return []Field{
		{"count", dataset.Some(float64(s.Count))},
		{"mean", s.Mean},
		{"std", s.Std},
		{"min", s.Min},
		{"25%", s.P25},
		{"50%", s.P50},
		{"75%", s.P75},
		{"max", s.Max},
	}
}

// Format2 renders a value with two decimals, or "n/a" when absent.
func Format2(x dataset.Value) string {
	f, ok := x.Get()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", f)
}

// quantile interpolates linearly between order statistics at q*(n-1).
// sorted must be ascending.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
