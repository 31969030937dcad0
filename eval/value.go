package eval

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/mathspan/content"
)

// Value is the result of evaluating a code expression. It is one of int64,
// float64, string, bool, NoneValue, AutoValue, Symbol, Array, *Dict, *Func
// or content.Content.
type Value any

// NoneValue is the type of none.
type NoneValue struct{}

// AutoValue is the type of auto.
type AutoValue struct{}

// Symbol is a named character such as pi or arrow.r.
type Symbol string

// Array is an ordered list of values.
type Array []Value

// Dict is an insertion-ordered string-keyed map.
type Dict struct {
	keys   []string
	values map[string]Value
}

// NewDict returns an empty dictionary.
func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

// Set inserts or replaces key.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get returns the value for key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string { return d.keys }

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// typeName names the type of v for diagnostics.
func typeName(v Value) string {
	switch v.(type) {
	case int64:
		return "integer"
	case float64:
		return "float"
	case string:
		return "string"
	case bool:
		return "boolean"
	case NoneValue:
		return "none"
	case AutoValue:
		return "auto"
	case Symbol:
		return "symbol"
	case Array:
		return "array"
	case *Dict:
		return "dictionary"
	case *Func:
		return "function"
	case content.Content:
		return "content"
	default:
		return "unknown"
	}
}

// repr renders v the way it is displayed when embedded in math.
func repr(v Value) string {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case NoneValue:
		return "none"
	case AutoValue:
		return "auto"
	case Symbol:
		return string(v)
	case Array:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = quoted(item)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Dict:
		if v.Len() == 0 {
			return "(:)"
		}
		parts := make([]string, 0, v.Len())
		for _, k := range v.Keys() {
			item, _ := v.Get(k)
			parts = append(parts, k+": "+quoted(item))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Func:
		return v.Name
	case content.Content:
		return "[...]"
	default:
		return "?"
	}
}

func quoted(v Value) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return repr(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// equal reports structural equality of two values.
func equal(a, b Value) bool {
	switch a := a.(type) {
	case int64:
		switch b := b.(type) {
		case int64:
			return a == b
		case float64:
			return float64(a) == b
		}
	case float64:
		switch b := b.(type) {
		case int64:
			return a == float64(b)
		case float64:
			return a == b
		}
	case string:
		b, ok := b.(string)
		return ok && a == b
	case bool:
		b, ok := b.(bool)
		return ok && a == b
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case AutoValue:
		_, ok := b.(AutoValue)
		return ok
	case Symbol:
		b, ok := b.(Symbol)
		return ok && a == b
	case Array:
		b, ok := b.(Array)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case *Dict:
		b, ok := b.(*Dict)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for _, k := range a.Keys() {
			av, _ := a.Get(k)
			bv, ok := b.Get(k)
			if !ok || !equal(av, bv) {
				return false
			}
		}
		return true
	case *Func:
		return a == b
	}
	return false
}
