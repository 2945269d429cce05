package typeconv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

func TestSerializeValue(t *testing.T) {
	ts := time.Date(2026, 8, 23, 10, 11, 12, 345_000_000, time.UTC)
	paris := time.FixedZone("CEST", 2*60*60)

	tests := []struct {
		name    string
		value   any
		colType core.ColumnType
		want    any
	}{
		{"nil passes", nil, core.TypeText, nil},
		{"string passes", "x", core.TypeText, "x"},
		{"bool passes", true, core.TypeBool, true},
		{"int passes", 42, core.TypeInt32, 42},
		{"double passes", 3.14, core.TypeDouble, 3.14},
		{"bytes pass", []byte{0x01}, core.TypeBytes, []byte{0x01}},
		{"int64 renders decimal text", int64(9007199254740993), core.TypeInt64, "9007199254740993"},
		{"uint64 renders decimal text", uint64(9007199254740993), core.TypeInt64, "9007199254740993"},
		{"datetime fixed form", ts, core.TypeDateTime, "2026-08-23T10:11:12.345Z"},
		{"datetime normalizes to utc", ts.In(paris), core.TypeDateTime, "2026-08-23T10:11:12.345Z"},
		{"date column keeps date only", ts, core.TypeDate, "2026-08-23"},
		{"json object to text", map[string]any{"a": float64(1)}, core.TypeJSON, `{"a":1}`},
		{"json column passes valid json text", `{"a":1}`, core.TypeJSON, `{"a":1}`},
		{"json column quotes bare string", "hello", core.TypeJSON, `"hello"`},
		{"json column renders number", float64(42), core.TypeJSON, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SerializeValue(tt.value, tt.colType))
		})
	}
}

func TestSerializeRows_ArrayIdentity(t *testing.T) {
	list := []any{"a", "b"}
	rows := [][]any{{list}}

	out := SerializeRows(rows, []core.ColumnType{core.TypeArray})

	require.Len(t, out, 1)
	got := out[0][0]
	_, encoded := got.(string)
	assert.False(t, encoded, "array columns stay native lists")
	assert.Equal(t, list, got)
}

func TestSerializeRows_MixedColumns(t *testing.T) {
	ts := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	rows := [][]any{
		{int64(1), ts, []any{1, 2}, nil},
		{int64(2), nil, nil, map[string]any{"k": "v"}},
	}
	types := []core.ColumnType{core.TypeInt64, core.TypeDate, core.TypeArray, core.TypeJSON}

	out := SerializeRows(rows, types)

	require.Len(t, out, 2)
	assert.Equal(t, []any{"1", "2026-08-23", []any{1, 2}, nil}, out[0])
	assert.Equal(t, []any{"2", nil, nil, `{"k":"v"}`}, out[1])
}

func TestSerializeRows_RaggedRows(t *testing.T) {
	rows := [][]any{
		{int64(1)},
		{int64(2), "extra"},
	}
	types := []core.ColumnType{core.TypeInt64}

	out := SerializeRows(rows, types)

	// Cells beyond the typed columns stay as they came.
	assert.Equal(t, []any{"1"}, out[0])
	assert.Equal(t, []any{"2", "extra"}, out[1])
}
