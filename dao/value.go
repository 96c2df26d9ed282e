package dao

import (
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ValueKind tags the scalar held by a Value.
type ValueKind uint8

const (
	NullValue ValueKind = iota
	IntValue
	FloatValue
	StringValue
	BoolValue
	TimeValue
	BytesValue
)

var valueKindNames = [...]string{
	NullValue:   "null",
	IntValue:    "int",
	FloatValue:  "float",
	StringValue: "string",
	BoolValue:   "bool",
	TimeValue:   "time",
	BytesValue:  "bytes",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "ValueKind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one column of a Row: a tagged union over the scalar kinds a driver
// can return. The zero Value is null.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	t    time.Time
	b    []byte
}

// Null returns SQL NULL. Int, Float, String, Time, Bytes and Bool wrap the other kinds.
func Null() Value { return Value{} }
func Int(v int64) Value { return Value{kind: IntValue, i: v} }
func Float(v float64) Value { return Value{kind: FloatValue, f: v} }
func String(v string) Value { return Value{kind: StringValue, s: v} }
func Time(v time.Time) Value { return Value{kind: TimeValue, t: v} }
func Bytes(v []byte) Value { return Value{kind: BytesValue, b: v} }
func Bool(v bool) Value {
	if v {
		return Value{kind: BoolValue, i: 1}
	}
	return Value{kind: BoolValue}
}

// Kind returns the scalar kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the column was SQL NULL.
func (v Value) IsNull() bool { return v.kind == NullValue }

// AsInt returns the integer and whether the value is an IntValue.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == IntValue }

// AsFloat returns the number for FloatValue and IntValue.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case FloatValue:
		return v.f, true
	case IntValue:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsString returns the text and whether the value is a StringValue.
func (v Value) AsString() (string, bool) { return v.s, v.kind == StringValue }

// AsBool returns the flag and whether the value is a BoolValue.
func (v Value) AsBool() (bool, bool) { return v.i != 0, v.kind == BoolValue }

// AsTime returns the timestamp and whether the value is a TimeValue.
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == TimeValue }

// AsBytes returns the raw bytes and whether the value is a BytesValue.
func (v Value) AsBytes() ([]byte, bool) { return v.b, v.kind == BytesValue }

// Interface returns the plain Go value: nil, int64, float64, string, bool,
// time.Time or []byte.
func (v Value) Interface() any {
	switch v.kind {
	case IntValue:
		return v.i
	case FloatValue:
		return v.f
	case StringValue:
		return v.s
	case BoolValue:
		return v.i != 0
	case TimeValue:
		return v.t
	case BytesValue:
		return v.b
	default:
		return nil
	}
}

// Value implements driver.Valuer so a column read from one call can be bound
// as an argument of another.
func (v Value) Value() (driver.Value, error) {
	return v.Interface(), nil
}

// String renders the value for display. Null renders as "NULL", times as RFC 3339.
func (v Value) String() string {
	switch v.kind {
	case IntValue:
		return strconv.FormatInt(v.i, 10)
	case FloatValue:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case StringValue:
		return v.s
	case BoolValue:
		return strconv.FormatBool(v.i != 0)
	case TimeValue:
		return v.t.Format(time.RFC3339Nano)
	case BytesValue:
		return base64.StdEncoding.EncodeToString(v.b)
	default:
		return "NULL"
	}
}

// MarshalJSON encodes the plain value; bytes become base64 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// MarshalYAML encodes the plain value; bytes become base64 strings.
func (v Value) MarshalYAML() (any, error) {
	if v.kind == BytesValue {
		return base64.StdEncoding.EncodeToString(v.b), nil
	}
	return v.Interface(), nil
}

// ValueOf converts a scanned driver value. text marks columns whose []byte
// payload is character data.
func ValueOf(src any, text bool) (Value, error) {
	switch x := src.(type) {
	case nil:
		return Null(), nil
	case int64:
		return Int(x), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, fmt.Errorf("unsigned value %d overflows int64", x)
		}
		return Int(int64(x)), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case time.Time:
		return Time(x), nil
	case []byte:
		if text {
			return String(string(x)), nil
		}
		return Bytes(x), nil
	case driver.Valuer:
		inner, err := x.Value()
		if err != nil {
			return Value{}, err
		}
		if _, again := inner.(driver.Valuer); again {
			return Value{}, fmt.Errorf("unsupported column value %T", src)
		}
		return ValueOf(inner, text)
	default:
		return Value{}, fmt.Errorf("unsupported column value %T", src)
	}
}
