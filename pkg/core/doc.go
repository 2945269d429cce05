// Package core defines the shared language of the sqlbridge system.
//
// This package contains:
//   - Query/result vocabulary (Query, ResultSet, ColumnType)
//   - Placeholder conventions (PlaceholderStyle)
//
// The Golden Rule: pkg/core imports ONLY the stdlib.
// All other packages depend on core, not the reverse.
package core
