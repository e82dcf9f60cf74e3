package vdom

import (
	"math"
	"reflect"
)

// Prop values follow host scripting semantics: all numeric kinds are one
// number type, functions are opaque, and a value is falsy when it is
// absent, nil, false, "", 0 or NaN.

// IsFunc reports whether v is a function value.
func IsFunc(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}

// IsSlice reports whether v is a slice or array prop value.
func IsSlice(v any) bool {
	return isSlice(v)
}

func isSlice(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// AsNumber converts any numeric kind to float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// IsZeroNumber reports whether v is the number zero.
func IsZeroNumber(v any) bool {
	n, ok := AsNumber(v)
	return ok && n == 0
}

// IsFalsy reports whether v is falsy.
func IsFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	}
	if n, ok := AsNumber(v); ok {
		return n == 0 || math.IsNaN(n)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// StrictEqual compares two values by identity-free strict equality:
// same kind and same value. Numbers compare numerically. Functions and
// slices are never strictly equal to anything, as each evaluation of a
// render produces fresh ones.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := AsNumber(a); ok {
		bn, ok := AsNumber(b)
		return ok && an == bn
	}
	if IsFunc(a) || IsFunc(b) || isSlice(a) || isSlice(b) {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// sliceEqual compares two sequence values element-wise up to the longer
// length. An index missing on one side compares as absent.
func sliceEqual(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	n := max(ra.Len(), rb.Len())
	for i := 0; i < n; i++ {
		var x, y any
		if i < ra.Len() {
			x = ra.Index(i).Interface()
		}
		if i < rb.Len() {
			y = rb.Index(i).Interface()
		}
		if !StrictEqual(x, y) {
			return false
		}
	}
	return true
}
