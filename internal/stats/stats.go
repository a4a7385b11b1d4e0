package stats

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type kind uint8

const (
	kindNA kind = iota
	kindInt
	kindFloat
)

// Value is a single statistic: an integer, a float, or NA.
// The zero Value is NA.
type Value struct {
	kind kind
	i    int64
	f    float64
}

func NA() Value { return Value{} }
func Int(n int64) Value { return Value{kind: kindInt, i: n} }
func Float(f float64) Value { return Value{kind: kindFloat, f: f} }
func (v Value) IsNA() bool { return v.kind == kindNA }
func (v Value) IsInt() bool { return v.kind == kindInt }
func (v Value) IsFloat() bool { return v.kind == kindFloat }

func (v Value) String() string {
	switch v.kind {
	case kindInt:
		return strconv.FormatInt(v.i, 10)
	case kindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return "NA"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case kindFloat:
		return json.Marshal(v.f)
	default:
		return []byte(`"NA"`), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == `"NA"` || string(data) == "null" {
		*v = NA()
		return nil
	}
	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*v = Int(n)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("stat value %s: not a number or \"NA\"", data)
	}
	*v = Float(f)
	return nil
}

// Stats maps a tool's statistic names to values.
type Stats map[string]Value

func (s Stats) Equal(other Stats) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

func dummy(names []string) Stats {
	s := make(Stats, len(names))
	for _, name := range names {
		s[name] = NA()
	}
	return s
}
