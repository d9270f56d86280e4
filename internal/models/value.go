package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Datatype names the value type of an attribute. It is a closed enum: every
// attribute declares one of these, and every stored value lives in the value
// table matching it.
type Datatype string

const (
	DatatypeString  Datatype = "string"
	DatatypeInteger Datatype = "integer"
	DatatypeFloat   Datatype = "float"
	DatatypeBoolean Datatype = "boolean"
)

func (d Datatype) Valid() bool {
	switch d {
	case DatatypeString, DatatypeInteger, DatatypeFloat, DatatypeBoolean:
		return true
	}
	return false
}

// Value is a tagged variant carrying one typed attribute value. Exactly one of
// the payload fields is meaningful, selected by the datatype tag. Using a
// closed variant instead of interface{} keeps datatype dispatch a switch over
// four cases rather than runtime reflection.
type Value struct {
	datatype Datatype
	s        string
	i        int64
	f        float64
	b        bool
}

func StringValue(s string) Value  { return Value{datatype: DatatypeString, s: s} }
func IntegerValue(i int64) Value  { return Value{datatype: DatatypeInteger, i: i} }
func FloatValue(f float64) Value  { return Value{datatype: DatatypeFloat, f: f} }
func BooleanValue(b bool) Value   { return Value{datatype: DatatypeBoolean, b: b} }

func (v Value) Datatype() Datatype { return v.datatype }

func (v Value) StringVal() string   { return v.s }
func (v Value) IntegerVal() int64   { return v.i }
func (v Value) FloatVal() float64   { return v.f }
func (v Value) BooleanVal() bool    { return v.b }

// Interface returns the payload as the corresponding native Go value.
func (v Value) Interface() interface{} {
	switch v.datatype {
	case DatatypeString:
		return v.s
	case DatatypeInteger:
		return v.i
	case DatatypeFloat:
		return v.f
	case DatatypeBoolean:
		return v.b
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Canonical renders the value in a stable textual form, used when hashing an
// entity's full value tuple. Floats go through strconv with the shortest
// round-trippable representation so that equal values hash equally.
func (v Value) Canonical() string {
	switch v.datatype {
	case DatatypeString:
		return strconv.Quote(v.s)
	case DatatypeInteger:
		return strconv.FormatInt(v.i, 10)
	case DatatypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case DatatypeBoolean:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// CoerceValue converts a decoded JSON value into a Value of the wanted
// datatype. JSON numbers arrive as float64; integers are accepted only when
// the number has no fractional part. A mismatch returns an error naming the
// expected datatype so callers can surface it as a validation failure.
func CoerceValue(raw interface{}, want Datatype) (Value, error) {
	switch want {
	case DatatypeString:
		if s, ok := raw.(string); ok {
			return StringValue(s), nil
		}
	case DatatypeInteger:
		switch n := raw.(type) {
		case int:
			return IntegerValue(int64(n)), nil
		case int64:
			return IntegerValue(n), nil
		case float64:
			if n == math.Trunc(n) && !math.IsInf(n, 0) {
				return IntegerValue(int64(n)), nil
			}
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return IntegerValue(i), nil
			}
		}
	case DatatypeFloat:
		switch n := raw.(type) {
		case float64:
			return FloatValue(n), nil
		case int:
			return FloatValue(float64(n)), nil
		case int64:
			return FloatValue(float64(n)), nil
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return FloatValue(f), nil
			}
		}
	case DatatypeBoolean:
		if b, ok := raw.(bool); ok {
			return BooleanValue(b), nil
		}
	default:
		return Value{}, fmt.Errorf("unrecognised datatype %q", want)
	}
	return Value{}, fmt.Errorf("expected a %s value, got %T", want, raw)
}
