package render

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

// ChartKind selects how the time series is drawn.
type ChartKind string

const (
	Line      ChartKind = "line"
	Area      ChartKind = "area"
	Scatter   ChartKind = "scatter"
	Histogram ChartKind = "histogram"
)

// ChartKinds lists the accepted kinds in menu order.
var ChartKinds = []ChartKind{Line, Area, Scatter, Histogram}

var chartAliases = map[string]ChartKind{
	"línea":      Line,
	"linea":      Line,
	"área":       Area,
	"dispersión": Scatter,
	"dispersion": Scatter,
	"histograma": Histogram,
}

// ParseChartKind accepts the English names and the Spanish menu labels.
func ParseChartKind(s string) (ChartKind, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	for _, c := range ChartKinds {
		if k == string(c) {
			return c, nil
		}
	}
	if c, ok := chartAliases[k]; ok {
		return c, nil
	}
	return "", &ParamError{Field: "chart", Value: s, Err: fmt.Errorf("use line, area, scatter or histogram")}
}

// Selection picks the variables plotted on the chart.
type Selection string

const (
	SelectTemperature Selection = Selection(dataset.Temperature)
	SelectHumidity    Selection = Selection(dataset.Humidity)
	SelectBoth        Selection = "both"
)

// VariableLabel maps the Spanish menu label "temperatura" to its canonical
// variable. Other input is returned trimmed and lower-cased for validation.
func VariableLabel(s string) dataset.Variable {
	k := strings.ToLower(strings.TrimSpace(s))
	if k == "temperatura" {
		return dataset.Temperature
	}
	return dataset.Variable(k)
}

// ParseSelection accepts a variable label or "both" ("ambas").
func ParseSelection(s string) (Selection, error) {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case string(SelectBoth), "ambas", "ambos":
		return SelectBoth, nil
	default:
		v, err := dataset.ParseVariable(string(VariableLabel(k)))
		if err != nil {
			return "", &ParamError{Field: "variable", Value: s, Err: err}
		}
		return Selection(v), nil
	}
}

// Variables expands the selection in canonical order.
func (s Selection) Variables() []dataset.Variable {
	if s == SelectBoth {
		return dataset.Variables
	}
	return []dataset.Variable{dataset.Variable(s)}
}

// Params are the widget values driving one render.
type Params struct {
	Variable       Selection        `json:"variable" yaml:"variable"`
	ChartKind      ChartKind        `json:"chart_kind" yaml:"chart_kind"`
	StatVariable   dataset.Variable `json:"stat_variable" yaml:"stat_variable"`
	FilterVariable dataset.Variable `json:"filter_variable" yaml:"filter_variable"`
	// Nil thresholds default to the mean of FilterVariable.
	MinThreshold *float64 `json:"min_threshold,omitempty" yaml:"min_threshold,omitempty"`
	MaxThreshold *float64 `json:"max_threshold,omitempty" yaml:"max_threshold,omitempty"`
	// Bins is the histogram bucket count. Zero means DefaultBins.
	Bins int `json:"bins,omitempty" yaml:"bins,omitempty"`
}

// DefaultBins is the histogram bucket count used when Params.Bins is zero.
const DefaultBins = 20

// MaxBins caps Params.Bins.
const MaxBins = 1000

// DefaultParams returns the initial widget state.
func DefaultParams() Params {
	return Params{
		Variable:       SelectBoth,
		ChartKind:      Line,
		StatVariable:   dataset.Temperature,
		FilterVariable: dataset.Temperature,
	}
}

// Validate checks every field and returns the first fault as a *ParamError.
func (p Params) Validate() error {
	if _, err := ParseSelection(string(p.Variable)); err != nil {
		return err
	}
	if _, err := ParseChartKind(string(p.ChartKind)); err != nil {
		return err
	}
	if _, err := dataset.ParseVariable(string(p.StatVariable)); err != nil {
		return &ParamError{Field: "stat", Value: string(p.StatVariable), Err: err}
	}
	if _, err := dataset.ParseVariable(string(p.FilterVariable)); err != nil {
		return &ParamError{Field: "filter", Value: string(p.FilterVariable), Err: err}
	}
	for _, t := range []struct {
		field string
		v     *float64
	}{{"min", p.MinThreshold}, {"max", p.MaxThreshold}} {
		if t.v != nil && !dataset.Finite(*t.v).Valid() {
			return &ParamError{Field: t.field, Value: fmt.Sprint(*t.v), Err: fmt.Errorf("must be a finite number")}
		}
	}
	if p.Bins < 0 {
		return &ParamError{Field: "bins", Value: fmt.Sprint(p.Bins), Err: fmt.Errorf("must not be negative")}
	}
	if p.Bins > MaxBins {
		return &ParamError{Field: "bins", Value: fmt.Sprint(p.Bins), Err: fmt.Errorf("must be at most %d", MaxBins)}
	}
	return nil
}

// ParamError reports one rejected render parameter.
type ParamError struct {
	Field string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }
