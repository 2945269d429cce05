package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
)

// isolationLevels is the fixed set StartTransaction accepts.
var isolationLevels = map[string]struct{}{
	"READ UNCOMMITTED": {},
	"READ COMMITTED":   {},
	"REPEATABLE READ":  {},
	"SERIALIZABLE":     {},
}

type txState int

const (
	txActive txState = iota
	txCommitted
	txRolledBack
)

// Tx is a transaction on one reserved connection. Statements run through
// the same pipeline as pooled queries and execute strictly in call order;
// every method serializes on the transaction's mutex.
//
// A failed statement marks the transaction aborted. Commit on an aborted
// transaction rolls back and fails with ErrTxRolledBack instead of
// committing partial work. Commit and Rollback finalize at most once and
// tolerate being called again as no-ops; the reserved connection returns
// to the pool exactly once.
type Tx struct {
	base   *Base
	conn   hostclient.ReservedConn
	logger *slog.Logger

	mu       sync.Mutex
	state    txState
	aborted  bool
	released bool
}

// StartTransaction reserves a pooled connection and issues BEGIN, plus the
// isolation-level statement when requested, ordered as the dialect
// requires. Failures on this path release the connection before returning.
func (b *Base) StartTransaction(ctx context.Context, opts *TxOptions) (*Tx, error) {
	requested := ""
	if opts != nil {
		requested = opts.IsolationLevel
	}
	isolation, err := normalizeIsolation(b.Profile, requested)
	if err != nil {
		return nil, err
	}

	conn, err := b.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	for _, sqlText := range beginStatements(b.Profile, isolation) {
		if _, err := conn.Execute(ctx, &hostclient.Statement{Fragments: []string{sqlText}}); err != nil {
			if relErr := b.Pool.Release(ctx, conn); relErr != nil {
				b.Logger.Debug("release after failed begin", "error", relErr)
			}
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
	}

	b.Logger.Debug("transaction started", "isolation", isolation)
	return &Tx{base: b, conn: conn, logger: b.Logger}, nil
}

// normalizeIsolation validates the requested level against the dialect and
// the fixed ANSI set, returning its canonical spelling.
func normalizeIsolation(p dialect.Profile, level string) (string, error) {
	if level == "" {
		return "", nil
	}
	if !p.SupportsIsolation {
		return "", fmt.Errorf("%w: %s does not accept isolation levels", ErrIsolationUnsupported, p.Name)
	}
	normalized := strings.ToUpper(strings.Join(strings.Fields(level), " "))
	if _, ok := isolationLevels[normalized]; !ok {
		return "", fmt.Errorf("%w: %q", ErrIsolationUnsupported, level)
	}
	return normalized, nil
}

// beginStatements orders BEGIN and the isolation statement for the
// dialect. Some backends scope SET TRANSACTION to the next transaction and
// want it first; others set it inside the open transaction.
func beginStatements(p dialect.Profile, isolation string) []string {
	if isolation == "" {
		return []string{"BEGIN"}
	}
	set := "SET TRANSACTION ISOLATION LEVEL " + isolation
	if p.IsolationBeforeBegin {
		return []string{set, "BEGIN"}
	}
	return []string{"BEGIN", set}
}

func (t *Tx) QueryRaw(ctx context.Context, q *core.Query) (*core.ResultSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res, err := t.executeLocked(ctx, q)
	if err != nil {
		return nil, err
	}
	return buildResultSet(res), nil
}

func (t *Tx) ExecuteRaw(ctx context.Context, q *core.Query) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res, err := t.executeLocked(ctx, q)
	if err != nil {
		return 0, err
	}
	return affectedCount(res), nil
}

func (t *Tx) executeLocked(ctx context.Context, q *core.Query) (*hostclient.Result, error) {
	if t.state != txActive {
		return nil, ErrTxClosed
	}
	stmt := t.base.buildStatement(q)
	res, err := t.conn.Execute(ctx, stmt)
	if err != nil {
		t.aborted = true
		return nil, err
	}
	return res, nil
}

// Commit finalizes the transaction. On an aborted transaction it rolls
// back instead and fails with ErrTxRolledBack. Calling Commit again after
// finalize is a no-op.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != txActive {
		return nil
	}
	if t.aborted {
		t.rollbackLocked(ctx)
		return ErrTxRolledBack
	}

	if _, err := t.conn.Execute(ctx, &hostclient.Statement{Fragments: []string{"COMMIT"}}); err != nil {
		t.rollbackLocked(ctx)
		return fmt.Errorf("commit failed: %w", err)
	}
	t.state = txCommitted
	t.releaseLocked(ctx)
	t.logger.Debug("transaction committed")
	return nil
}

// Rollback finalizes the transaction. On an already-finalized transaction
// it is a no-op, so abort-driven cleanup and caller cleanup can both call
// it safely.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != txActive {
		return nil
	}
	t.rollbackLocked(ctx)
	return nil
}

// rollbackLocked issues ROLLBACK and releases the connection. Failures
// here are cleanup failures: they are logged and swallowed so they never
// mask the error that brought us here.
func (t *Tx) rollbackLocked(ctx context.Context) {
	if _, err := t.conn.Execute(ctx, &hostclient.Statement{Fragments: []string{"ROLLBACK"}}); err != nil {
		t.logger.Debug("rollback on broken connection failed", "error", err)
	}
	t.state = txRolledBack
	t.releaseLocked(ctx)
	t.logger.Debug("transaction rolled back")
}

// releaseLocked returns the reserved connection to the pool at most once.
func (t *Tx) releaseLocked(ctx context.Context) {
	if t.released {
		return
	}
	t.released = true
	if err := t.base.Pool.Release(ctx, t.conn); err != nil {
		t.logger.Debug("release after transaction failed", "error", err)
	}
}
