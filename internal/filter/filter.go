// Package filter partitions a dataset around a threshold on one variable.
// Every function returns a new view; the input dataset is never modified.
package filter

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

// Above keeps the records whose v reading is strictly greater than t.
// Records without a reading are dropped; order is preserved.
func Above(ds *dataset.Dataset, v dataset.Variable, t float64) (*dataset.Dataset, error) {
	return view(ds, v, "above", func(x float64) bool { return x > t })
}

// Below keeps the records whose v reading is strictly less than t.
func Below(ds *dataset.Dataset, v dataset.Variable, t float64) (*dataset.Dataset, error) {
	return view(ds, v, "below", func(x float64) bool { return x < t })
}

func view(ds *dataset.Dataset, v dataset.Variable, label string, keep func(float64) bool) (*dataset.Dataset, error) {
	if _, err := dataset.ParseVariable(string(v)); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("filter %s: nil dataset", label)
	}
	name := fmt.Sprintf("%s [%s %s]", ds.Name(), v, label)
	return ds.View(name, func(r dataset.Record) bool {
		x, ok := r.Get(v).Get()
		return ok && keep(x)
	}), nil
}

// Partition holds record indexes split into four disjoint groups relative
// to a threshold.
type Partition struct {
	Above   []int
	Below   []int
	Equal   []int
	Missing []int
}

// Len is the number of indexes across all groups.
func (p Partition) Len() int {
	return len(p.Above) + len(p.Below) + len(p.Equal) + len(p.Missing)
}

// Split assigns every record of ds to exactly one group of the partition.
func Split(ds *dataset.Dataset, v dataset.Variable, t float64) (Partition, error) {
	if _, err := dataset.ParseVariable(string(v)); err != nil {
		return Partition{}, err
	}
	if ds == nil {
		return Partition{}, fmt.Errorf("split: nil dataset")
	}
	var p Partition
	for i := 0; i < ds.Len(); i++ {
		x, ok := ds.At(i).Get(v).Get()
		switch {
		case !ok:
			p.Missing = append(p.Missing, i)
		case x > t:
			p.Above = append(p.Above, i)
		case x < t:
			p.Below = append(p.Below, i)
		default:
			p.Equal = append(p.Equal, i)
		}
	}
	return p, nil
}

// Range describes the default slider for a variable: the observed bounds
// with the mean as seed. All three are None when v has no readings.
type Range struct {
	Variable dataset.Variable `json:"variable" yaml:"variable"`
	Min      dataset.Value    `json:"min" yaml:"min"`
	Max      dataset.Value    `json:"max" yaml:"max"`
	Default  dataset.Value    `json:"default" yaml:"default"`
}

// Bounds returns the slider range for v over ds.
func Bounds(ds *dataset.Dataset, v dataset.Variable) (Range, error) {
	if _, err := dataset.ParseVariable(string(v)); err != nil {
		return Range{}, err
	}
	if ds == nil {
		return Range{}, fmt.Errorf("bounds %s: nil dataset", v)
	}
	r := Range{Variable: v}
	vals := ds.Values(v)
	if len(vals) == 0 {
		return r, nil
	}
	lo, _ := stats.Min(vals)
	hi, _ := stats.Max(vals)
	r.Min = dataset.Some(lo)
	r.Max = dataset.Some(hi)
	r.Default = dataset.Finite(mean(vals, math.Max(math.Abs(lo), math.Abs(hi))))
	return r, nil
}

// mean divides by scale first when the plain sum overflows.
func mean(vals []float64, scale float64) float64 {
	m, _ := stats.Mean(vals)
	if !math.IsInf(m, 0) || scale <= 1 {
		return m
	}
	scaled := make([]float64, len(vals))
	for i, x := range vals {
		scaled[i] = x / scale
	}
	m, _ = stats.Mean(scaled)
	return m * scale
}

// Contains reports whether t lies inside the range. Thresholds outside it are
// still valid filter inputs.
func (r Range) Contains(t float64) bool {
	lo, okLo := r.Min.Get()
	hi, okHi := r.Max.Get()
	return okLo && okHi && t >= lo && t <= hi
}
