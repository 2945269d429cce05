// Package typeconv moves values across the boundary between the caller's
// convention and the host client's. On the way in it rewrites primitive
// arrays into native array-literal text; on the way out it infers a logical
// type per result column and serializes values into the shape the caller
// expects.
package typeconv

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// CoerceArgs rewrites each bound argument whose value is a primitive array
// (elements limited to nil, strings, numbers, and booleans) into the
// database's array-literal text form. Arrays carrying nested objects or
// arrays pass through unmodified so JSON columns keep their semantics, as
// does anything that is not an array. Runs on every execution path,
// including statements whose placeholders were not recognized.
func CoerceArgs(args []any) []any {
	if len(args) == 0 {
		return args
	}
	out := make([]any, len(args))
	for i, v := range args {
		out[i] = coerceValue(v)
	}
	return out
}

func coerceValue(v any) any {
	elems, ok := primitiveElements(v)
	if !ok {
		return v
	}
	return arrayLiteral(elems)
}

// primitiveElements returns the elements of v when v is an array of
// primitives. []byte is binary, never an array.
func primitiveElements(v any) ([]any, bool) {
	switch vals := v.(type) {
	case nil:
		return nil, false
	case []byte:
		return nil, false
	case []any:
		for _, e := range vals {
			if !isPrimitive(e) {
				return nil, false
			}
		}
		return vals, true
	case []string:
		out := make([]any, len(vals))
		for i, e := range vals {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(vals))
		for i, e := range vals {
			out[i] = e
		}
		return out, true
	case []int64:
		out := make([]any, len(vals))
		for i, e := range vals {
			out[i] = e
		}
		return out, true
	case []float64:
		out := make([]any, len(vals))
		for i, e := range vals {
			out[i] = e
		}
		return out, true
	case []bool:
		out := make([]any, len(vals))
		for i, e := range vals {
			out[i] = e
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		e := rv.Index(i).Interface()
		if !isPrimitive(e) {
			return nil, false
		}
		out[i] = e
	}
	return out, true
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// arrayLiteral renders elements as brace-delimited array-literal text:
// strings double-quote-wrapped with backslash and quote escaping, numbers
// as-is (non-finite floats as NULL), booleans unquoted, nil as NULL.
func arrayLiteral(elems []any) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		writeArrayElement(&b, e)
	}
	b.WriteByte('}')
	return b.String()
}

func writeArrayElement(b *strings.Builder, e any) {
	switch v := e.(type) {
	case nil:
		b.WriteString("NULL")
	case string:
		writeQuoted(b, v)
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case int:
		b.WriteString(strconv.Itoa(v))
	case int8:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case int16:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint8:
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint16:
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint32:
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(v, 10))
	case float32:
		writeFloat(b, float64(v), 32)
	case float64:
		writeFloat(b, v, 64)
	}
}

func writeFloat(b *strings.Builder, v float64, bits int) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		b.WriteString("NULL")
		return
	}
	b.WriteString(strconv.FormatFloat(v, 'f', -1, bits))
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
}
