package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LenientNumber accepts a JSON number or a numeric string. Any other value
// (null, "abc", true, objects) leaves it unset instead of failing the request,
// so the parameter falls back to its default.
type LenientNumber struct {
	Value float64
	Set   bool
}

func (n *LenientNumber) UnmarshalJSON(b []byte) error {
	*n = LenientNumber{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	n.Value = v
	n.Set = true
	return nil
}

func (n LenientNumber) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Float returns the value, or nil when unset.
func (n LenientNumber) Float() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// Int returns the value truncated toward zero, or nil when unset. Values
// beyond the int32 range saturate; the optimizers clamp them further.
func (n LenientNumber) Int() *int {
	if !n.Set {
		return nil
	}
	v := int(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(n.Value))))
	return &v
}

// decodeLenientObject decodes b into dst when b is a JSON object. Any other
// value leaves dst zeroed so every field falls back to its default. Unknown
// keys inside the object are still rejected.
func decodeLenientObject(b []byte, dst any) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (p *GeneticParamsRequest) UnmarshalJSON(b []byte) error {
	type plain GeneticParamsRequest
	var v plain
	if err := decodeLenientObject(b, &v); err != nil {
		return err
	}
	*p = GeneticParamsRequest(v)
	return nil
}

func (o *TabuOptionsRequest) UnmarshalJSON(b []byte) error {
	type plain TabuOptionsRequest
	var v plain
	if err := decodeLenientObject(b, &v); err != nil {
		return err
	}
	*o = TabuOptionsRequest(v)
	return nil
}
