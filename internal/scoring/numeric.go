package scoring

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type numericState uint8

const (
	numericAbsent numericState = iota
	numericInvalid
	numericValue
)

// Numeric is a user-entered number that may be missing or unparseable.
// Form fields arrive as text ("", " 45 ", "abc") or as JSON numbers.
type Numeric struct {
	state numericState
	value float64
}

func Absent() Numeric { return Numeric{} }

func Invalid() Numeric { return Numeric{state: numericInvalid} }

func Value(v float64) Numeric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid()
	}
	return Numeric{state: numericValue, value: v}
}

// ParseNumeric trims text and parses it as a finite float.
func ParseNumeric(text string) Numeric {
	text = strings.TrimSpace(text)
	if text == "" {
		return Absent()
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Invalid()
	}
	return Value(v)
}

func (n Numeric) IsAbsent() bool  { return n.state == numericAbsent }
func (n Numeric) IsInvalid() bool { return n.state == numericInvalid }
func (n Numeric) Present() bool   { return n.state == numericValue }

func (n Numeric) Get() (float64, bool) {
	return n.value, n.state == numericValue
}

// Or returns the value, or def when absent or invalid.
func (n Numeric) Or(def float64) float64 {
	if n.state != numericValue {
		return def
	}
	return n.value
}

// Int truncates toward zero; absent and invalid read as 0.
func (n Numeric) Int() int {
	return int(math.Trunc(n.Or(0)))
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = Absent()
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = Invalid()
			return nil
		}
		*n = ParseNumeric(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*n = Invalid()
		return nil
	}
	*n = Value(v)
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if n.state != numericValue {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}
