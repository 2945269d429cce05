package core

// Query is a single SQL request as the caller hands it over: the literal
// SQL text plus the positionally bound arguments.
type Query struct {
	SQL  string
	Args []any
}

// ResultSet is the shape every read returns. Columns and Types are parallel;
// each row is a value list parallel to Columns. Column names are unique per
// query, not globally. A ResultSet is transient: built per query, handed to
// the caller, never retained.
type ResultSet struct {
	Columns []string
	Types   []ColumnType
	Rows    [][]any
}
