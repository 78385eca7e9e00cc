package common

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Missing returns the missing cell value
func Missing() Value {
	return Value{}
}

// Float returns a float64 cell value
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Int returns an int64 cell value
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// String returns a string cell value
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Rank returns a rank cell value. Rank 1 is the largest value in a
// cross-section
func Rank(r int64) Value {
	return Value{kind: KindRank, i: r}
}

// Kind returns the kind tag of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing returns whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// Float64 returns the numeric content of a float, int or rank value.
// The second return is false for missing and string values
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt, KindRank:
		return float64(v.i), true
	}
	return 0, false
}

// Int64 returns the integer content of an int or rank value
func (v Value) Int64() (int64, bool) {
	if v.kind == KindInt || v.kind == KindRank {
		return v.i, true
	}
	return 0, false
}

// Str returns the string content of a string value
func (v Value) Str() (string, bool) {
	if v.kind == KindString {
		return v.s, true
	}
	return "", false
}

// String implements fmt.Stringer for logging and report output
func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return v.s
	case KindRank:
		return fmt.Sprintf("rank(%d)", v.i)
	}
	return "missing"
}

// Interface returns the value as its dynamic Go type, for JSON export.
// Missing becomes nil
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return v.i
	case KindString:
		return v.s
	case KindRank:
		return v.i
	}
	return nil
}

// valueJSON is the wire form of a Value. Carrying the kind tag keeps
// Int and Rank cells from collapsing into floats through encoding/json,
// which decodes every bare JSON number as float64
type valueJSON struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON implements json.Marshaler, tagging the payload with its kind
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Kind: v.kind.String()}
	var payload interface{}
	switch v.kind {
	case KindFloat:
		payload = v.f
	case KindInt, KindRank:
		payload = v.i
	case KindString:
		payload = v.s
	default:
		return json.Marshal(out)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	out.Value = raw
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler, restoring the tagged kind
func (v *Value) UnmarshalJSON(b []byte) error {
	var w valueJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch w.Kind {
	case "missing":
		*v = Missing()
	case "float":
		var f float64
		if err := json.Unmarshal(w.Value, &f); err != nil {
			return err
		}
		*v = Float(f)
	case "int":
		var i int64
		if err := json.Unmarshal(w.Value, &i); err != nil {
			return err
		}
		*v = Int(i)
	case "rank":
		var r int64
		if err := json.Unmarshal(w.Value, &r); err != nil {
			return err
		}
		*v = Rank(r)
	case "string":
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return err
		}
		*v = String(s)
	default:
		return fmt.Errorf("unrecognised value kind %q", w.Kind)
	}
	return nil
}

// ValueOf converts a dynamic value back into a tagged cell value, the
// inverse of Interface for the types JSON decoding produces
func ValueOf(i interface{}) Value {
	switch t := i.(type) {
	case nil:
		return Missing()
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case string:
		return String(t)
	case Value:
		return t
	}
	return Missing()
}

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindRank:
		return "rank"
	}
	return "missing"
}

// String implements fmt.Stringer
func (v Verbosity) String() string {
	switch v {
	case VerbosityWarning:
		return "warning"
	case VerbosityDebug:
		return "debug"
	case VerbosityTransactions:
		return "transactions"
	case VerbosityInfo:
		return "info"
	}
	return "none"
}

// VerbosityFromString converts a config string into a verbosity level
func VerbosityFromString(s string) (Verbosity, error) {
	switch s {
	case "none", "":
		return VerbosityNone, nil
	case "warning":
		return VerbosityWarning, nil
	case "debug":
		return VerbosityDebug, nil
	case "transactions":
		return VerbosityTransactions, nil
	case "info":
		return VerbosityInfo, nil
	}
	return VerbosityNone, fmt.Errorf("unrecognised verbosity '%v'", s)
}
