// Package dialect defines the per-dialect profiles the adapter pipeline is
// parameterized by. A Profile is pure data with no handler functions and no
// driver imports, so any layer can reference it without pulling in a
// database dependency.
package dialect

import (
	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// Profile holds the static knobs that distinguish one SQL dialect from
// another as far as the bridge is concerned. Everything behavioral lives in
// the shared adapter pipeline; a dialect contributes only this data.
type Profile struct {
	// Name is the dialect identifier ("postgres", "mysql", "sqlite").
	Name string

	// Placeholder is the positional-marker convention the caller writes.
	Placeholder core.PlaceholderStyle

	// ArrayLiterals reports whether the backend accepts brace-delimited
	// array-literal text, which makes primitive-slice coercion meaningful.
	ArrayLiterals bool

	// DefaultMaxConns bounds the connection pool when the caller does not
	// configure a limit of their own.
	DefaultMaxConns int

	// SupportsIsolation reports whether explicit transaction isolation
	// levels can be requested at all.
	SupportsIsolation bool

	// IsolationBeforeBegin orders the isolation statement ahead of BEGIN.
	// MySQL's SET TRANSACTION applies to the next transaction started, so it
	// must precede BEGIN; PostgreSQL's applies to the current one.
	IsolationBeforeBegin bool
}
