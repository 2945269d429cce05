package adapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
	"github.com/leapstack-labs/sqlbridge/pkg/pool"
	"github.com/leapstack-labs/sqlbridge/pkg/template"
	"github.com/leapstack-labs/sqlbridge/pkg/typeconv"
)

// Base carries the execution pipeline shared by every dialect adapter:
// template compilation and caching, argument coercion, pooled execution,
// and result typing. Embed it in concrete adapters; the dialect profile is
// the only moving part.
type Base struct {
	Profile dialect.Profile
	Client  hostclient.Client
	Pool    *pool.Pool
	Cache   *template.Cache
	Logger  *slog.Logger
}

// NewBase wires the pipeline over a host client. A nil cache in cfg means
// the adapter owns a private one; MaxConnections zero falls back to the
// profile default.
func NewBase(profile dialect.Profile, client hostclient.Client, cfg Config, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cache := cfg.Cache
	if cache == nil {
		cache = template.NewCache()
	}
	max := cfg.MaxConnections
	if max <= 0 {
		max = profile.DefaultMaxConns
	}
	return &Base{
		Profile: profile,
		Client:  client,
		Pool:    pool.New(client, max, logger),
		Cache:   cache,
		Logger:  logger,
	}
}

func (b *Base) QueryRaw(ctx context.Context, q *core.Query) (*core.ResultSet, error) {
	stmt := b.buildStatement(q)
	res, err := b.execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return buildResultSet(res), nil
}

func (b *Base) ExecuteRaw(ctx context.Context, q *core.Query) (int64, error) {
	stmt := b.buildStatement(q)
	res, err := b.execute(ctx, stmt)
	if err != nil {
		return 0, err
	}
	return affectedCount(res), nil
}

// ExecuteScript splits the script on top-level semicolons and runs every
// statement in order on a single pooled connection. The first failure
// stops the script.
func (b *Base) ExecuteScript(ctx context.Context, script string) error {
	statements := template.SplitStatements(script)
	if len(statements) == 0 {
		return nil
	}

	conn, err := b.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Pool.Release(ctx, conn); err != nil {
			b.Logger.Debug("release after script failed", "error", err)
		}
	}()

	for _, sqlText := range statements {
		if _, err := conn.Execute(ctx, &hostclient.Statement{Fragments: []string{sqlText}}); err != nil {
			return fmt.Errorf("script statement failed: %w", err)
		}
	}
	return nil
}

// Dispose tears the adapter down. The pool rejects pending acquirers and
// returns idle connections to the host; release failures there are logged
// and swallowed so they cannot mask a close failure.
func (b *Base) Dispose(ctx context.Context) error {
	if err := b.Pool.Dispose(ctx); err != nil {
		b.Logger.Warn("connection release during dispose failed", "error", err)
	}
	b.Cache.Clear()
	if err := b.Client.Close(ctx); err != nil {
		return fmt.Errorf("failed to close host client: %w", err)
	}
	return nil
}

// buildStatement compiles the SQL against the dialect's placeholder
// convention and binds coerced arguments in slot order. SQL whose
// placeholders are not recognized falls back to raw execution with the
// coerced arguments bound positionally; coercion applies on both paths.
func (b *Base) buildStatement(q *core.Query) *hostclient.Statement {
	args := typeconv.CoerceArgs(q.Args)

	tmpl, ok := b.Cache.Get(q.SQL, len(q.Args), b.Profile.Placeholder)
	if !ok {
		return &hostclient.Statement{Fragments: []string{q.SQL}, Values: args}
	}

	values := make([]any, len(tmpl.ArgOrder))
	for i, argIndex := range tmpl.ArgOrder {
		values[i] = args[argIndex]
	}
	return &hostclient.Statement{Fragments: tmpl.Fragments, Values: values}
}

// execute runs one statement on a pooled connection.
func (b *Base) execute(ctx context.Context, stmt *hostclient.Statement) (*hostclient.Result, error) {
	conn, err := b.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	res, err := conn.Execute(ctx, stmt)
	if relErr := b.Pool.Release(ctx, conn); relErr != nil {
		b.Logger.Debug("release after execute failed", "error", relErr)
	}
	return res, err
}

// buildResultSet types and serializes host rows. The empty result keeps
// the empty shape: non-nil columns, types, and rows.
func buildResultSet(res *hostclient.Result) *core.ResultSet {
	columns := res.Columns
	if columns == nil {
		columns = []string{}
	}
	types := typeconv.InferTypes(columns, res.Rows)
	rows := typeconv.SerializeRows(res.Rows, types)
	if rows == nil {
		rows = [][]any{}
	}
	return &core.ResultSet{Columns: columns, Types: types, Rows: rows}
}

func affectedCount(res *hostclient.Result) int64 {
	if res.AffectedRows != 0 {
		return res.AffectedRows
	}
	if res.Count != 0 {
		return int64(res.Count)
	}
	return 0
}
