package adapter

import "errors"

var (
	// ErrTxClosed reports a query or execute on a finalized transaction.
	ErrTxClosed = errors.New("transaction already closed")

	// ErrTxRolledBack reports a commit on a transaction that saw a prior
	// error; the commit rolls the transaction back and fails with this.
	ErrTxRolledBack = errors.New("transaction already rolled back due to prior error")

	// ErrIsolationUnsupported reports an isolation level the dialect or
	// the fixed ANSI set does not allow.
	ErrIsolationUnsupported = errors.New("isolation level not supported")
)
