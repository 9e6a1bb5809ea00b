package dataset

import (
	"encoding/json"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is an optional reading. The zero Value holds no reading.
type Value struct {
	v     float64
	valid bool
}

// Some returns a Value holding x.
func Some(x float64) Value { return Value{v: x, valid: true} }

// Finite returns Some(x), or None when x is NaN or infinite.
func Finite(x float64) Value {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return None()
	}
	return Some(x)
}

// None returns an empty Value.
func None() Value { return Value{} }

// Get returns the reading and whether it is present.
func (x Value) Get() (float64, bool) { return x.v, x.valid }

// Valid reports whether a reading is present.
func (x Value) Valid() bool { return x.valid }

// Or returns the reading or def when absent.
func (x Value) Or(def float64) float64 {
	if !x.valid {
		return def
	}
	return x.v
}

func (x Value) String() string {
	if !x.valid {
		return ""
	}
	return strconv.FormatFloat(x.v, 'f', -1, 64)
}

func (x Value) MarshalJSON() ([]byte, error) {
	if !x.valid {
		return []byte("null"), nil
	}
	return json.Marshal(x.v)
}

func (x *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*x = None()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*x = Some(f)
	return nil
}

func (x Value) MarshalYAML() (interface{}, error) {
	if !x.valid {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return x.v, nil
}
