// Package hostclient defines the narrow surface this module consumes from
// the runtime's native SQL capability. The adapter layer speaks only to
// these interfaces; concrete transports live in the subpackages (dbclient
// for an in-process database/sql backend, bridge for a host-call boundary)
// and clientmock provides a scriptable stub for tests.
package hostclient

import (
	"context"
	"errors"
)

// ErrHostUnavailable reports that no native SQL capability is reachable.
// It is surfaced once, at construction or connect time, and never retried.
var ErrHostUnavailable = errors.New("host sql capability unavailable")

// Statement is one executable unit handed to the host. It carries SQL in
// fragment form so the host can bind values with its own placeholder
// convention.
//
// Two shapes are valid. Interpolated: len(Fragments) == len(Values)+1, and
// value i binds between Fragments[i] and Fragments[i+1]. Raw: a single
// fragment holding the full SQL text, with Values bound positionally by the
// host as-is. The raw shape is the fallback for SQL whose placeholders were
// not recognized.
type Statement struct {
	// Fragments is the SQL text split at placeholder positions.
	Fragments []string
	// Values holds one value per placeholder slot, in slot order.
	// Repeated parameters appear once per slot.
	Values []any
}

// Interpolated reports whether the statement carries fragment-interpolated
// values. A single fragment with no values satisfies both shapes and
// executes identically either way.
func (s *Statement) Interpolated() bool {
	return len(s.Fragments) == len(s.Values)+1
}

// Result is the host's answer to one statement. Queries fill Columns and
// Rows; statements fill the command metadata. Hosts that cannot report a
// field leave it zero.
type Result struct {
	Columns []string
	Rows    [][]any

	// Count is the host-reported row count, used as a fallback when
	// AffectedRows is not available.
	Count int
	// Command names the completed SQL command when the host reports one.
	Command string
	// AffectedRows is the number of rows changed by a write.
	AffectedRows int64
	// LastInsertID is the last generated key, when the host reports one.
	LastInsertID int64
}

// Client executes statements against the host's SQL capability. Execute may
// run on any connection the host chooses; Reserve pins a single dedicated
// connection for ordered work such as transactions. Implementations must be
// safe for concurrent use.
type Client interface {
	Execute(ctx context.Context, stmt *Statement) (*Result, error)
	Reserve(ctx context.Context) (ReservedConn, error)
	Close(ctx context.Context) error
}

// ReservedConn is a single host connection pinned to the caller. Statements
// execute in call order. Release returns the connection to the host; the
// conn must not be used afterwards.
type ReservedConn interface {
	Execute(ctx context.Context, stmt *Statement) (*Result, error)
	Release(ctx context.Context) error
}
