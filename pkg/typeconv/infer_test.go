package typeconv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

func TestInferTypes_SingleColumn(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
		want core.ColumnType
	}{
		{"bool", [][]any{{true}}, core.TypeBool},
		{"int is int32", [][]any{{42}}, core.TypeInt32},
		{"int64 is int64", [][]any{{int64(42)}}, core.TypeInt64},
		{"uint64 is int64", [][]any{{uint64(42)}}, core.TypeInt64},
		{"integral float is int32", [][]any{{float64(7)}}, core.TypeInt32},
		{"fractional float is double", [][]any{{3.14}}, core.TypeDouble},
		{"time value is datetime", [][]any{{time.Now()}}, core.TypeDateTime},
		{"datetime-shaped string", [][]any{{"2026-08-23T10:11:12.345Z"}}, core.TypeDateTime},
		{"datetime with space separator", [][]any{{"2026-08-23 10:11:12"}}, core.TypeDateTime},
		{"datetime with offset", [][]any{{"2026-08-23T10:11:12+02:00"}}, core.TypeDateTime},
		{"date-shaped string", [][]any{{"2026-08-23"}}, core.TypeDate},
		{"uuid-shaped string", [][]any{{"8f14e45f-ceea-467f-a8cb-9f3f0d3cde21"}}, core.TypeUUID},
		{"plain string", [][]any{{"hello"}}, core.TypeText},
		{"json-shaped string stays text", [][]any{{`{"a":1}`}}, core.TypeText},
		{"bytes", [][]any{{[]byte{0x01}}}, core.TypeBytes},
		{"map is json", [][]any{{map[string]any{"a": 1}}}, core.TypeJSON},
		{"list is array", [][]any{{[]any{1, 2}}}, core.TypeArray},
		{"typed list is array", [][]any{{[]string{"x"}}}, core.TypeArray},
		{"null then array", [][]any{{nil}, {[]any{1, 2}}}, core.TypeArray},
		{"array beats object", [][]any{{map[string]any{"a": 1}}, {[]string{"x"}}}, core.TypeArray},
		{"null then object", [][]any{{nil}, {map[string]any{"a": 1}}}, core.TypeJSON},
		{"first non-null scalar wins", [][]any{{nil}, {"2026-08-23"}, {"hello"}}, core.TypeDate},
		{"all null", [][]any{{nil}, {nil}}, core.TypeUnknownNumeric},
		{"no rows", nil, core.TypeUnknownNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types := InferTypes([]string{"c"}, tt.rows)
			require.Len(t, types, 1)
			assert.Equal(t, tt.want, types[0])
		})
	}
}

func TestInferTypes_PerColumn(t *testing.T) {
	columns := []string{"id", "tags", "meta"}
	rows := [][]any{
		{int64(1), nil, nil},
		{int64(2), []string{"a"}, map[string]any{"k": true}},
	}

	types := InferTypes(columns, rows)

	assert.Equal(t, []core.ColumnType{core.TypeInt64, core.TypeArray, core.TypeJSON}, types)
}

func TestInferTypes_RaggedRows(t *testing.T) {
	// A short row must not panic the pass over later columns.
	columns := []string{"a", "b"}
	rows := [][]any{
		{int64(1)},
		{int64(2), "hello"},
	}

	types := InferTypes(columns, rows)

	assert.Equal(t, []core.ColumnType{core.TypeInt64, core.TypeText}, types)
}
