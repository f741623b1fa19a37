package models

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/soltixdb/curvecast/internal/utils"
)

// Float is a float64 whose JSON form is null for NaN and infinities.
// Decoding accepts numbers, numeric strings and null (as NaN).
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if !utils.IsFinite(v) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Float) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*f = Float(math.NaN())
		return nil
	}
	v, ok := utils.ToFloat64(raw)
	if !ok {
		return fmt.Errorf("invalid number: %s", data)
	}
	*f = Float(v)
	return nil
}

// Float64 returns the plain value
func (f Float) Float64() float64 {
	return float64(f)
}

// Floats converts a slice of float64
func Floats(values []float64) []Float {
	out := make([]Float, len(values))
	for i, v := range values {
		out[i] = Float(v)
	}
	return out
}

// FloatPtr converts an optional float64; nil stays nil.
func FloatPtr(v *float64) *Float {
	if v == nil {
		return nil
	}
	f := Float(*v)
	return &f
}
