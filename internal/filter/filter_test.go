package filter

import (
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

func times(ds *dataset.Dataset) []time.Time {
	out := make([]time.Time, 0, ds.Len())
	for _, r := range ds.Records() {
		out = append(out, r.Time)
	}
	return out
}

func TestAboveAndBelow(t *testing.T) {
	ds := scenario()

	above, err := Above(ds, dataset.Temperature, 22)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at(5), at(10)}, times(above))
	assert.Equal(t, ds.ID(), above.ID())
	assert.Equal(t, ds.Columns(), above.Columns())

	below, err := Below(ds, dataset.Temperature, 22)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at(0)}, times(below))

	// source is untouched
	assert.Equal(t, 3, ds.Len())
}

func TestStrictComparison(t *testing.T) {
	ds := scenario()
	above, err := Above(ds, dataset.Temperature, 25)
	require.NoError(t, err)
	assert.Equal(t, []float64{30}, above.Values(dataset.Temperature))

	below, err := Below(ds, dataset.Temperature, 25)
	require.NoError(t, err)
	assert.Equal(t, []float64{20}, below.Values(dataset.Temperature))
}

func TestMissingReadingsAreDropped(t *testing.T) {
	ds := scenario()
	above, err := Above(ds, dataset.Humidity, 0)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at(0), at(10)}, times(above))

	below, err := Below(ds, dataset.Humidity, 1000)
	require.NoError(t, err)
	assert.Equal(t, 2, below.Len())
}

func TestInvalidVariable(t *testing.T) {
	_, err := Above(scenario(), dataset.Variable("pressure"), 1)
	assert.ErrorIs(t, err, dataset.ErrInvalidVariable)
	_, err = Below(scenario(), dataset.Variable(""), 1)
	assert.ErrorIs(t, err, dataset.ErrInvalidVariable)
	_, err = Split(scenario(), dataset.Variable("x"), 1)
	assert.ErrorIs(t, err, dataset.ErrInvalidVariable)
}

func TestSplitCoversEveryRecordOnce(t *testing.T) {
	ds := dataset.New("id-2", "x.csv", []dataset.Variable{dataset.Temperature}, []dataset.Record{
		{Time: at(0), Temperature: dataset.Some(22)},
		{Time: at(1), Temperature: dataset.Some(21.9)},
		{Time: at(2)},
		{Time: at(3), Temperature: dataset.Some(22.1)},
		{Time: at(4), Temperature: dataset.Some(22)},
	})
	p, err := Split(ds, dataset.Temperature, 22)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, p.Above)
	assert.Equal(t, []int{1}, p.Below)
	assert.Equal(t, []int{0, 4}, p.Equal)
	assert.Equal(t, []int{2}, p.Missing)
	assert.Equal(t, ds.Len(), p.Len())

	above, err := Above(ds, dataset.Temperature, 22)
	require.NoError(t, err)
	below, err := Below(ds, dataset.Temperature, 22)
	require.NoError(t, err)
	assert.Equal(t, len(p.Above), above.Len())
	assert.Equal(t, len(p.Below), below.Len())
}

func TestBounds(t *testing.T) {
	r, err := Bounds(scenario(), dataset.Temperature)
	require.NoError(t, err)
	assert.Equal(t, dataset.Some(20), r.Min)
	assert.Equal(t, dataset.Some(30), r.Max)
	assert.Equal(t, dataset.Some(25), r.Default)
	assert.True(t, r.Contains(22))
	assert.False(t, r.Contains(31))

	empty := dataset.New("id-3", "x.csv", nil, nil)
	r, err = Bounds(empty, dataset.Humidity)
	require.NoError(t, err)
	assert.False(t, r.Min.Valid())
	assert.False(t, r.Default.Valid())
	assert.False(t, r.Contains(0))
}

func TestBoundsNilDataset(t *testing.T) {
	_, err := Bounds(nil, dataset.Temperature)
	require.Error(t, err)
}

func TestBoundsMeanDoesNotOverflow(t *testing.T) {
	ds := dataset.New("id-4", "big.csv", []dataset.Variable{dataset.Temperature}, []dataset.Record{
		{Time: at(0), Temperature: dataset.Some(1e308)},
		{Time: at(1), Temperature: dataset.Some(1e308)},
	})
	r, err := Bounds(ds, dataset.Temperature)
	require.NoError(t, err)
	m, ok := r.Default.Get()
	require.True(t, ok)
	assert.InDelta(t, 1e308, m, 1e294)
}
