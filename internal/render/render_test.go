package render

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

func at(min int) time.Time {
	return time.Date(2024, 5, 1, 10, min, 0, 0, time.UTC)
}

func scenario() *dataset.Dataset {
	return dataset.New("id-1", "scenario.csv", []dataset.Variable{dataset.Temperature, dataset.Humidity}, []dataset.Record{
		{Time: at(0), Temperature: dataset.Some(20), Humidity: dataset.Some(50)},
		{Time: at(5), Temperature: dataset.Some(25), Humidity: dataset.None()},
		{Time: at(10), Temperature: dataset.Some(30), Humidity: dataset.Some(60)},
	})
}

func ptr(f float64) *float64 { return &f }

func TestRenderDefaults(t *testing.T) {
	out, err := Render(scenario(), DefaultParams())
	require.NoError(t, err)

	require.Len(t, out.Series, 2)
	assert.Equal(t, dataset.Temperature, out.Series[0].Variable)
	assert.Equal(t, dataset.Humidity, out.Series[1].Variable)
	assert.Len(t, out.Series[1].Points, 3)
	assert.False(t, out.Series[1].Points[1].Value.Valid())
	assert.Nil(t, out.Series[0].Bins)

	assert.Equal(t, 3, out.Summary.Count)
	assert.Equal(t, dataset.Some(25), out.Range.Default)

	// thresholds seed at the mean
	assert.Equal(t, dataset.Some(25), out.MinThreshold)
	assert.Equal(t, dataset.Some(25), out.MaxThreshold)
	assert.Equal(t, []float64{30}, out.Above.Values(dataset.Temperature))
	assert.Equal(t, []float64{20}, out.Below.Values(dataset.Temperature))

	assert.True(t, strings.HasPrefix(string(out.Export), "Time,temperature,humedad\n"))
	assert.Contains(t, string(out.Export), "2024-05-01T10:10:00Z,30,60")
}

func TestRenderExplicitThresholds(t *testing.T) {
	p := DefaultParams()
	p.MinThreshold = ptr(22)
	p.MaxThreshold = ptr(22)
	out, err := Render(scenario(), p)
	require.NoError(t, err)
	require.Equal(t, 2, out.Above.Len())
	assert.True(t, at(5).Equal(out.Above.At(0).Time))
	assert.True(t, at(10).Equal(out.Above.At(1).Time))
	require.Equal(t, 1, out.Below.Len())
	assert.True(t, at(0).Equal(out.Below.At(0).Time))

	// min above max is allowed
	p.MinThreshold = ptr(40)
	p.MaxThreshold = ptr(10)
	out, err = Render(scenario(), p)
	require.NoError(t, err)
	assert.Zero(t, out.Above.Len())
	assert.Zero(t, out.Below.Len())
	assert.Equal(t, "Time,temperature,humedad\n", string(out.Export))
}

func TestRenderWithoutValuesGivesEmptyViews(t *testing.T) {
	ds := dataset.New("id-2", "x.csv", []dataset.Variable{dataset.Temperature}, []dataset.Record{
		{Time: at(0), Temperature: dataset.Some(20)},
	})
	p := DefaultParams()
	p.FilterVariable = dataset.Humidity
	p.StatVariable = dataset.Humidity
	out, err := Render(ds, p)
	require.NoError(t, err)
	assert.Zero(t, out.Summary.Count)
	assert.False(t, out.Summary.Mean.Valid())
	assert.False(t, out.MinThreshold.Valid())
	assert.Zero(t, out.Above.Len())
	assert.Zero(t, out.Below.Len())
}

func TestRenderIsPure(t *testing.T) {
	ds := scenario()
	a, err := Render(ds, DefaultParams())
	require.NoError(t, err)
	b, err := Render(ds, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, a.Export, b.Export)
	assert.Equal(t, a.Summary, b.Summary)
	assert.Equal(t, 3, ds.Len())
}

func TestRenderHistogram(t *testing.T) {
	p := DefaultParams()
	p.Variable = "temperature"
	p.ChartKind = "histograma"
	p.Bins = 2
	out, err := Render(scenario(), p)
	require.NoError(t, err)
	require.Len(t, out.Series, 1)
	s := out.Series[0]
	assert.Equal(t, Histogram, s.Kind)
	require.Len(t, s.Bins, 2)
	assert.Equal(t, 1, s.Bins[0].Count)
	assert.Equal(t, 2, s.Bins[1].Count)
	assert.Equal(t, 20.0, s.Bins[0].Lo)
	assert.Equal(t, 25.0, s.Bins[0].Hi)
}

func TestHistogramSingleValue(t *testing.T) {
	bins := histogram([]float64{5, 5, 5}, 4)
	require.Len(t, bins, 4)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 3, total)
	assert.Nil(t, histogram(nil, 4))
}

func TestHistogramExtremeValues(t *testing.T) {
	for _, vals := range [][]float64{
		{-math.MaxFloat64, math.MaxFloat64},
		{math.MaxFloat64, math.MaxFloat64},
		{1e308, 1e308, -1e308},
	} {
		bins := histogram(vals, 3)
		require.Len(t, bins, 3)
		total := 0
		for _, b := range bins {
			assert.False(t, math.IsInf(b.Lo, 0) || math.IsNaN(b.Lo), "%v", vals)
			assert.False(t, math.IsInf(b.Hi, 0) || math.IsNaN(b.Hi), "%v", vals)
			total += b.Count
		}
		assert.Equal(t, len(vals), total, "%v", vals)
	}
}

func TestRenderRejectsBadParams(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Params)
		field   string
		invalid bool
	}{
		{"variable", func(p *Params) { p.Variable = "pressure" }, "variable", true},
		{"stat", func(p *Params) { p.StatVariable = "pressure" }, "stat", true},
		{"filter", func(p *Params) { p.FilterVariable = "" }, "filter", true},
		{"chart", func(p *Params) { p.ChartKind = "pie" }, "chart", false},
		{"bins", func(p *Params) { p.Bins = -1 }, "bins", false},
		{"bins over cap", func(p *Params) { p.ChartKind = Histogram; p.Bins = MaxBins + 1 }, "bins", false},
		{"bins huge", func(p *Params) { p.ChartKind = Histogram; p.Bins = math.MaxInt }, "bins", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			_, err := Render(scenario(), p)
			require.Error(t, err)
			var pe *ParamError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.field, pe.Field)
			assert.Equal(t, tc.invalid, errors.Is(err, dataset.ErrInvalidVariable))
		})
	}
}

func TestParseChartKindAliases(t *testing.T) {
	for in, want := range map[string]ChartKind{
		"line": Line, "Línea": Line, "área": Area, "area": Area,
		"dispersión": Scatter, "scatter": Scatter, "histograma": Histogram,
	} {
		got, err := ParseChartKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestSpanishVariableLabels(t *testing.T) {
	s, err := ParseSelection("temperatura")
	require.NoError(t, err)
	assert.Equal(t, SelectTemperature, s)

	s, err = ParseSelection("Ambas")
	require.NoError(t, err)
	assert.Equal(t, []dataset.Variable{dataset.Temperature, dataset.Humidity}, s.Variables())

	assert.Equal(t, dataset.Temperature, VariableLabel(" Temperatura "))
	assert.Equal(t, dataset.Humidity, VariableLabel("humedad"))
}

func TestReportCarriesSite(t *testing.T) {
	ds := scenario()
	out, err := Render(ds, DefaultParams())
	require.NoError(t, err)
	rep, err := Report(ds, out, 2)
	require.NoError(t, err)
	require.NotNil(t, rep.Site)
	assert.Equal(t, "ESP32", rep.Site.Device)
	assert.Contains(t, rep.Markdown(), "- Place: Universidad EAFIT")
}
