package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

// cmpValues compares optional readings with a small absolute tolerance.
var cmpValues = cmp.Comparer(func(a, b dataset.Value) bool {
	x, okA := a.Get()
	y, okB := b.Get()
	if okA != okB {
		return false
	}
	return !okA || math.Abs(x-y) <= 1e-4
})

func ts(min int) time.Time {
	return time.Date(2024, 5, 1, 10, min, 0, 0, time.UTC)
}

func scenario() *dataset.Dataset {
	return dataset.New("id-1", "scenario.csv", []dataset.Variable{dataset.Temperature, dataset.Humidity}, []dataset.Record{
		{Time: ts(0), Temperature: dataset.Some(20), Humidity: dataset.Some(50)},
		{Time: ts(5), Temperature: dataset.Some(25), Humidity: dataset.None()},
		{Time: ts(10), Temperature: dataset.Some(30), Humidity: dataset.Some(60)},
	})
}

func TestSummarize(t *testing.T) {
	some := dataset.Some
	cases := []struct {
		name string
		ds   *dataset.Dataset
		v    dataset.Variable
		want Summary
	}{
		{
			name: "scenario_temperature",
			ds:   scenario(),
			v:    dataset.Temperature,
			want: Summary{
				Variable: dataset.Temperature, Count: 3,
				Mean: some(25), Std: some(5), Min: some(20),
				P25: some(22.5), P50: some(25), P75: some(27.5), Max: some(30),
			},
		},
		{
			name: "scenario_humidity_skips_missing",
			ds:   scenario(),
			v:    dataset.Humidity,
			want: Summary{
				Variable: dataset.Humidity, Count: 2,
				Mean: some(55), Std: some(7.07107), Min: some(50),
				P25: some(52.5), P50: some(55), P75: some(57.5), Max: some(60),
			},
		},
		{
			name: "sample_std_divides_by_n_minus_1",
			ds: dataset.New("id-2", "x.csv", []dataset.Variable{dataset.Temperature}, []dataset.Record{
				{Time: ts(0), Temperature: some(18.3)},
				{Time: ts(1), Temperature: some(19.0)},
				{Time: ts(2), Temperature: some(25.85)},
				{Time: ts(3), Temperature: some(12.2)},
			}),
			v: dataset.Temperature,
			want: Summary{
				Variable: dataset.Temperature, Count: 4,
				Mean: some(18.8375), Std: some(5.58411), Min: some(12.2),
				P25: some(16.775), P50: some(18.65), P75: some(20.7125), Max: some(25.85),
			},
		},
		{
			name: "single_value_has_no_std",
			ds: dataset.New("id-3", "x.csv", []dataset.Variable{dataset.Temperature}, []dataset.Record{
				{Time: ts(0), Temperature: some(21.5)},
			}),
			v: dataset.Temperature,
			want: Summary{
				Variable: dataset.Temperature, Count: 1,
				Mean: some(21.5), Min: some(21.5),
				P25: some(21.5), P50: some(21.5), P75: some(21.5), Max: some(21.5),
			},
		},
		{
			name: "no_values",
			ds: dataset.New("id-4", "x.csv", []dataset.Variable{dataset.Humidity}, []dataset.Record{
				{Time: ts(0)},
				{Time: ts(1)},
			}),
			v:    dataset.Humidity,
			want: Summary{Variable: dataset.Humidity},
		},
		{
			name: "empty_dataset",
			ds:   dataset.New("id-5", "x.csv", nil, nil),
			v:    dataset.Temperature,
			want: Summary{Variable: dataset.Temperature},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Summarize(tc.ds, tc.v)
			if err != nil {
				t.Fatalf("Summarize: %v", err)
			}
			if diff := cmp.Diff(got, tc.want, cmpValues); diff != "" {
				t.Errorf("Unexpected result (-got +want):\n%s", diff)
			}
		})
	}
}

func TestSummarizeCountMatchesPresentValues(t *testing.T) {
	ds := scenario()
	for _, v := range dataset.Variables {
		s, err := Summarize(ds, v)
		if err != nil {
			t.Fatalf("Summarize(%s): %v", v, err)
		}
		present := 0
		for _, r := range ds.Records() {
			if r.Get(v).Valid() {
				present++
			}
		}
		if s.Count != present {
			t.Errorf("%s: count = %d, want %d", v, s.Count, present)
		}
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	ds := scenario()
	a, err := Summarize(ds, dataset.Temperature)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Summarize(ds, dataset.Temperature)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b, cmp.AllowUnexported(dataset.Value{})); diff != "" {
		t.Errorf("second call differs (-first +second):\n%s", diff)
	}
}

func TestSummarizeAllFieldOrder(t *testing.T) {
	all, err := SummarizeAll(scenario())
	if err != nil {
		t.Fatalf("SummarizeAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d summaries, want 2", len(all))
	}
	var names []string
	var got []float64
	for _, f := range all[dataset.Humidity].Fields() {
		names = append(names, f.Name)
		got = append(got, f.Value.Or(math.NaN()))
	}
	wantNames := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	if diff := cmp.Diff(names, wantNames); diff != "" {
		t.Errorf("field names (-got +want):\n%s", diff)
	}
	want := []float64{2, 55, 7.0710678, 50, 52.5, 55, 57.5, 60}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("field values (-got +want):\n%s", diff)
	}
}

func TestSummarizeInvalidVariable(t *testing.T) {
	_, err := Summarize(scenario(), dataset.Variable("pressure"))
	if !errors.Is(err, dataset.ErrInvalidVariable) {
		t.Fatalf("err = %v, want ErrInvalidVariable", err)
	}
}

func TestQuantileInterpolates(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	cases := map[float64]float64{0: 1, 0.25: 1.75, 0.5: 2.5, 0.75: 3.25, 1: 4}
	for q, want := range cases {
		if got := quantile(sorted, q); math.Abs(got-want) > 1e-12 {
			t.Errorf("quantile(%v) = %v, want %v", q, got, want)
		}
	}
}

func TestReportMarkdown(t *testing.T) {
	rep, err := NewReport(scenario(), 2)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	rep.Filters = append(rep.Filters, FilterCount{Label: "above", Variable: dataset.Temperature, Op: ">", Threshold: dataset.Some(22), Rows: 2})

	if len(rep.Samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(rep.Samples))
	}
	if rep.Missing[dataset.Humidity] != 1 {
		t.Fatalf("missing humidity = %d, want 1", rep.Missing[dataset.Humidity])
	}
	if strings.Contains(rep.Markdown(), "## Measurement site") {
		t.Fatalf("site section rendered without a site")
	}
	site := DefaultSite()
	rep.Site = &site
	md := rep.Markdown()
	for _, want := range []string{
		"## Measurement site",
		"- Place: Universidad EAFIT",
		"- Coordinates: 6.2006, -75.5783",
		"- Device: ESP32 measuring temperature and humedad",
		"- File: scenario.csv",
		"- Rows: 3",
		"| stat | temperature | humedad |",
		"| count | 3 | 2 |",
		"| mean | 25.00 | 55.00 |",
		"| 25% | 22.50 | 52.50 |",
		"- above: temperature > 22.00 → 2 rows",
		"| 2024-05-01 10:05:00 | 25.00 | n/a |",
		"humedad: 1 of 3 rows have no value",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	page := string(rep.HTML())
	if !strings.Contains(page, "<table>") || !strings.Contains(page, "<h2") {
		t.Fatalf("html missing table or heading: %s", page)
	}
}

func TestSummarizeNearMaxFloat(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ds := dataset.New("id-big", "big.csv", []dataset.Variable{dataset.Temperature}, []dataset.Record{
		{Time: at, Temperature: dataset.Some(1e308)},
		{Time: at.Add(time.Minute), Temperature: dataset.Some(1e308)},
		{Time: at.Add(2 * time.Minute), Temperature: dataset.Some(-1e308)},
	})
	s, err := Summarize(ds, dataset.Temperature)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	for _, f := range s.Fields() {
		x, ok := f.Value.Get()
		if !ok {
			t.Fatalf("%s: no value", f.Name)
		}
		if math.IsInf(x, 0) || math.IsNaN(x) {
			t.Errorf("%s = %v, want finite", f.Name, x)
		}
	}
	if m := s.Mean.Or(0); math.Abs(m-1e308/3) > 1e295 {
		t.Errorf("mean = %v, want %v", m, 1e308/3)
	}
}
