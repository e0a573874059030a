package label

import (
	"fmt"
	"math"
)

// Visitor receives the rendering of a single label value.
// A Value calls exactly one of its methods per Visit.
type Visitor interface {
	WriteInt(v int64)
	WriteFloat(v float64)
	WriteStr(v string)
}

// Value is a single label value that knows how to render itself.
type Value interface {
	Visit(v Visitor)
}

// String is a string label value.
type String string

func (s String) Visit(v Visitor) { v.WriteStr(string(s)) }

// Int is an integer label value.
type Int int64

func (i Int) Visit(v Visitor) { v.WriteInt(int64(i)) }

// Float is a floating point label value.
type Float float64

func (f Float) Visit(v Visitor) { v.WriteFloat(float64(f)) }

// Bool renders as "true" or "false".
type Bool bool

func (b Bool) Visit(v Visitor) {
	if b {
		v.WriteStr("true")
		return
	}
	v.WriteStr("false")
}

// ValueOf wraps a plain Go value so it can be visited.
// Values already implementing Value are returned as is; fmt.Stringer values render
// through String. Any other type renders with fmt's %v verb.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case Value:
		return t
	case string:
		return String(t)
	case int:
		return Int(t)
	case int8:
		return Int(t)
	case int16:
		return Int(t)
	case int32:
		return Int(t)
	case int64:
		return Int(t)
	case uint:
		return uintValue(uint64(t))
	case uint8:
		return Int(t)
	case uint16:
		return Int(t)
	case uint32:
		return Int(t)
	case uint64:
		return uintValue(t)
	case float32:
		return Float(t)
	case float64:
		return Float(t)
	case bool:
		return Bool(t)
	case fmt.Stringer:
		return String(t.String())
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return String(fmt.Sprintf("%d", u))
	}
	return Int(int64(u))
}
