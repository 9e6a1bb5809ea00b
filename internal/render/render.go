// Package render turns a dataset and a set of widget values into every
// dashboard output in one pure call. Nothing is cached between calls.
package render

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/sensordash-cli/internal/analysis"
	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
	"github.com/KaramelBytes/sensordash-cli/internal/export"
	"github.com/KaramelBytes/sensordash-cli/internal/filter"
)

// Point is one chart sample. Missing readings stay in the series as gaps.
type Point struct {
	Time  time.Time     `json:"time"`
	Value dataset.Value `json:"value"`
}

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Series is the chart data for one variable.
type Series struct {
	Variable dataset.Variable `json:"variable"`
	Kind     ChartKind        `json:"kind"`
	Points   []Point          `json:"points"`
	Bins     []Bin            `json:"bins,omitempty"`
}

// Outputs holds everything derived from one render.
type Outputs struct {
	Params  Params           `json:"params"`
	Series  []Series         `json:"series"`
	Summary analysis.Summary `json:"summary"`
	Range   filter.Range     `json:"range"`
	// Effective thresholds after defaulting. None when the filter variable
	// has no readings.
	MinThreshold dataset.Value    `json:"min_threshold"`
	MaxThreshold dataset.Value    `json:"max_threshold"`
	Above        *dataset.Dataset `json:"-"`
	Below        *dataset.Dataset `json:"-"`
	// Export is the Above view encoded as CSV.
	Export []byte `json:"-"`
}

// Render recomputes all outputs for ds under p.
func Render(ds *dataset.Dataset, p Params) (*Outputs, error) {
	if ds == nil {
		return nil, fmt.Errorf("render: nil dataset")
	}
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}

	out := &Outputs{Params: p}
	for _, v := range p.Variable.Variables() {
		out.Series = append(out.Series, series(ds, v, p))
	}

	if out.Summary, err = analysis.Summarize(ds, p.StatVariable); err != nil {
		return nil, err
	}
	if out.Range, err = filter.Bounds(ds, p.FilterVariable); err != nil {
		return nil, err
	}

	out.MinThreshold = threshold(p.MinThreshold, out.Range.Default)
	out.MaxThreshold = threshold(p.MaxThreshold, out.Range.Default)
	if out.Above, err = view(ds, p.FilterVariable, out.MinThreshold, filter.Above); err != nil {
		return nil, err
	}
	if out.Below, err = view(ds, p.FilterVariable, out.MaxThreshold, filter.Below); err != nil {
		return nil, err
	}

	if out.Export, err = export.CSV(out.Above); err != nil {
		return nil, err
	}
	return out, nil
}

func normalize(p Params) (Params, error) {
	if err := p.Validate(); err != nil {
		return p, err
	}
	p.Variable, _ = ParseSelection(string(p.Variable))
	p.ChartKind, _ = ParseChartKind(string(p.ChartKind))
	if p.Bins == 0 {
		p.Bins = DefaultBins
	}
	return p, nil
}

func threshold(explicit *float64, seed dataset.Value) dataset.Value {
	if explicit != nil {
		return dataset.Some(*explicit)
	}
	return seed
}

type filterFunc func(*dataset.Dataset, dataset.Variable, float64) (*dataset.Dataset, error)

// view applies fn at t. Without a threshold the view is empty.
func view(ds *dataset.Dataset, v dataset.Variable, t dataset.Value, fn filterFunc) (*dataset.Dataset, error) {
	x, ok := t.Get()
	if !ok {
		return ds.View(ds.Name(), func(dataset.Record) bool { return false }), nil
	}
	return fn(ds, v, x)
}

func series(ds *dataset.Dataset, v dataset.Variable, p Params) Series {
	s := Series{Variable: v, Kind: p.ChartKind, Points: make([]Point, 0, ds.Len())}
	for _, r := range ds.Records() {
		s.Points = append(s.Points, Point{Time: r.Time, Value: r.Get(v)})
	}
	if p.ChartKind == Histogram {
		s.Bins = histogram(ds.Values(v), p.Bins)
	}
	return s
}

// histogram buckets vals into n equal-width bins spanning [min, max].
func histogram(vals []float64, n int) []Bin {
	if len(vals) == 0 || n < 1 {
		return nil
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		w := math.Max(1, math.Abs(lo)*1e-9)
		if math.IsInf(lo+w, 0) {
			lo -= w
		} else {
			hi = lo + w
		}
	}
	dividers := make([]float64, n+1)
	if math.IsInf(hi-lo, 0) {
		// the width overflows; interpolate the edges instead
		for i := range dividers {
			f := float64(i) / float64(n)
			dividers[i] = lo*(1-f) + hi*f
		}
	} else {
		floats.Span(dividers, lo, hi)
	}
	dividers[n] = hi

	// stat.Histogram wants values below the top edge; the maximum joins the last bin
	top := sort.SearchFloat64s(sorted, hi)
	counts := stat.Histogram(nil, dividers, sorted[:top], nil)
	counts[n-1] += float64(len(sorted) - top)

	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	return bins
}
