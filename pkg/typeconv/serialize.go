package typeconv

import (
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// jsonStd is a drop-in fast encoder compatible with the standard library.
var jsonStd = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	dateTimeLayout = "2006-01-02T15:04:05.000Z"
	dateLayout     = "2006-01-02"
)

// SerializeRows converts every value in place for return to the caller and
// hands the rows back. Rows are transient per query, so mutating them is
// safe; the host result they came from is discarded afterwards.
func SerializeRows(rows [][]any, types []core.ColumnType) [][]any {
	for _, row := range rows {
		for i := range row {
			if i < len(types) {
				row[i] = SerializeValue(row[i], types[i])
			}
		}
	}
	return rows
}

// SerializeValue converts one returned value into the caller's expected
// representation. Arrays pass through as native lists and are never
// JSON-encoded: the caller iterates array columns as lists, and stringifying
// them here is the one failure mode this layer must not have. Values in JSON
// columns always come back as valid JSON text. Large integers render as
// decimal text, native times as fixed ISO-8601 text; everything else passes
// through unchanged.
func SerializeValue(v any, colType core.ColumnType) any {
	if v == nil {
		return nil
	}

	switch colType {
	case core.TypeArray:
		return v
	case core.TypeJSON:
		return jsonText(v)
	}

	switch val := v.(type) {
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case time.Time:
		if colType == core.TypeDate {
			return val.UTC().Format(dateLayout)
		}
		return val.UTC().Format(dateTimeLayout)
	}
	return v
}

// jsonText renders v as valid JSON text. Strings already holding valid JSON
// pass through; bare strings get quoted; anything unencodable degrades to
// its plain string form rather than failing the query.
func jsonText(v any) any {
	if s, ok := v.(string); ok {
		if jsonStd.Valid([]byte(s)) {
			return s
		}
	}
	data, err := jsonStd.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
