package core

// ColumnType is the logical type tag inferred for a result column. The host
// client exposes no server-side type metadata, so types are inferred from the
// values themselves; the caller's own schema remains the final authority.
type ColumnType string

const (
	// TypeBool marks boolean columns.
	TypeBool ColumnType = "bool"
	// TypeInt32 marks integer columns that fit 32 bits.
	TypeInt32 ColumnType = "int32"
	// TypeInt64 marks large-integer columns; values serialize as decimal text.
	TypeInt64 ColumnType = "int64"
	// TypeDouble marks non-integral numeric columns.
	TypeDouble ColumnType = "double"
	// TypeText marks plain string columns.
	TypeText ColumnType = "text"
	// TypeBytes marks binary columns.
	TypeBytes ColumnType = "bytes"
	// TypeDate marks bare-date columns (no time component).
	TypeDate ColumnType = "date"
	// TypeDateTime marks date-time columns.
	TypeDateTime ColumnType = "datetime"
	// TypeUUID marks columns whose string values are canonical UUIDs.
	TypeUUID ColumnType = "uuid"
	// TypeJSON marks columns holding JSON documents.
	TypeJSON ColumnType = "json"
	// TypeArray marks list-valued columns. Arrays are opaque: no element
	// type narrowing is attempted and values pass through as native lists.
	TypeArray ColumnType = "array"
	// TypeUnknownNumeric is the weak default for columns that never showed a
	// non-null value. Deliberately not an error.
	TypeUnknownNumeric ColumnType = "unknown-numeric"
)

// String implements fmt.Stringer.
func (t ColumnType) String() string { return string(t) }
