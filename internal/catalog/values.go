package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Num is a nullable number. The zero value is null.
type Num struct {
	Value float64
	Valid bool
}

// N returns a valid Num.
func N(v float64) Num { return Num{Value: v, Valid: true} }

// Null is the missing number.
var Null = Num{}

// Finite reports whether n holds a finite value.
func (n Num) Finite() bool {
	return n.Valid && !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0)
}

// Ptr returns nil for null, or a pointer to the value.
func (n Num) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

func (n Num) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Num) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Null
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = N(v)
	return nil
}

// Str is a nullable string. The zero value is null.
type Str struct {
	Value string
	Valid bool
}

// S returns a valid Str.
func S(v string) Str { return Str{Value: v, Valid: true} }

func (s Str) String() string { return s.Value }

func (s Str) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *Str) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Str{}
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = S(v)
	return nil
}

// ParseNumber coerces a raw cell into a number. Blank cells, the literal
// "null" in any case, unparsable text and non-finite results all become null.
func ParseNumber(cell string) Num {
	v := strings.TrimSpace(cell)
	if v == "" || strings.EqualFold(v, "null") {
		return Null
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Null
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null
	}
	if f == 0 {
		// fold -0 into 0
		f = 0
	}
	return N(f)
}
