package typeconv

import (
	"math"
	"reflect"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

var (
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// InferTypes decides a logical type for every column by scanning the values
// of all rows, not just the first: row zero may be null or empty while a
// later row disambiguates the true shape. An array value anywhere wins and
// stops narrowing; otherwise any object value marks the column JSON;
// otherwise the first non-nil scalar is representative. A column that never
// shows a value gets the unknown-numeric weak default.
func InferTypes(columns []string, rows [][]any) []core.ColumnType {
	types := make([]core.ColumnType, len(columns))
	for i := range columns {
		types[i] = inferColumn(rows, i)
	}
	return types
}

func inferColumn(rows [][]any, col int) core.ColumnType {
	sawObject := false
	var scalar any
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v := row[col]
		if v == nil {
			continue
		}
		if isArrayValue(v) {
			return core.TypeArray
		}
		if isObjectValue(v) {
			sawObject = true
			continue
		}
		if scalar == nil {
			scalar = v
		}
	}
	if sawObject {
		return core.TypeJSON
	}
	if scalar == nil {
		return core.TypeUnknownNumeric
	}
	return scalarType(scalar)
}

// isArrayValue reports whether v is a list of any element type. []byte is
// binary, not a list.
func isArrayValue(v any) bool {
	switch v.(type) {
	case []byte:
		return false
	case []any, []string, []int, []int64, []float64, []bool:
		return true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return false
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	return rv.Type().Elem().Kind() != reflect.Uint8
}

// isObjectValue reports whether v is a JSON-like object: a map or a struct
// other than time.Time.
func isObjectValue(v any) bool {
	if _, ok := v.(time.Time); ok {
		return false
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return false
	}
	return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
}

func scalarType(v any) core.ColumnType {
	switch val := v.(type) {
	case bool:
		return core.TypeBool
	case int, int8, int16, int32, uint, uint8, uint16, uint32:
		return core.TypeInt32
	case int64, uint64:
		return core.TypeInt64
	case float32:
		return floatType(float64(val))
	case float64:
		return floatType(val)
	case time.Time:
		return core.TypeDateTime
	case []byte:
		return core.TypeBytes
	case string:
		return stringType(val)
	}
	return core.TypeText
}

func floatType(v float64) core.ColumnType {
	if v == math.Trunc(v) && !math.IsInf(v, 0) && !math.IsNaN(v) {
		return core.TypeInt32
	}
	return core.TypeDouble
}

// stringType narrows date-, datetime-, and UUID-shaped strings. Strings
// that merely contain JSON text stay text; only genuine object values mark
// a column JSON.
func stringType(s string) core.ColumnType {
	switch {
	case dateTimePattern.MatchString(s):
		return core.TypeDateTime
	case datePattern.MatchString(s):
		return core.TypeDate
	case len(s) == 36 && uuid.Validate(s) == nil:
		return core.TypeUUID
	default:
		return core.TypeText
	}
}
