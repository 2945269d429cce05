package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlbridge/internal/testutil"
	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/pool"
)

func TestRegistered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("sqlite"))
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New(context.Background(), adapter.Config{URL: ""}, nil)

	require.Error(t, err)
	assert.ErrorContains(t, err, "malformed connection string")
}

func TestPathFromURL(t *testing.T) {
	assert.Equal(t, "data/app.db", pathFromURL("sqlite://data/app.db"))
	assert.Equal(t, "file:./dev.db", pathFromURL("file:./dev.db"))
	assert.Equal(t, ":memory:", pathFromURL(":memory:"))
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		params *Params
		want   string
	}{
		{
			name:   "no options",
			path:   "app.db",
			params: &Params{},
			want:   "app.db",
		},
		{
			name:   "read only",
			path:   "app.db",
			params: &Params{ReadOnly: true},
			want:   "file:app.db?mode=ro",
		},
		{
			name:   "busy timeout",
			path:   "app.db",
			params: &Params{BusyTimeout: 5000},
			want:   "file:app.db?_pragma=busy_timeout(5000)",
		},
		{
			name:   "appends to existing query",
			path:   "file:app.db?cache=shared",
			params: &Params{ReadOnly: true},
			want:   "file:app.db?cache=shared&mode=ro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(tt.path, tt.params))
		})
	}
}

func TestParseParams(t *testing.T) {
	got, err := parseParams(map[string]any{"read_only": true, "busy_timeout": 5000})
	require.NoError(t, err)
	assert.True(t, got.ReadOnly)
	assert.Equal(t, 5000, got.BusyTimeout)

	got, err = parseParams(nil)
	require.NoError(t, err)
	assert.False(t, got.ReadOnly)
}

// openMemory opens an adapter over a fresh in-memory database seeded with
// two rows.
func openMemory(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()

	a, err := New(ctx, adapter.Config{URL: ":memory:"}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Dispose(context.Background()) })

	script := `
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, score REAL);
INSERT INTO users (name, score) VALUES ('ada', 9.5);
INSERT INTO users (name, score) VALUES ('grace', 8.25);
`
	require.NoError(t, a.ExecuteScript(ctx, script))
	return a
}

func TestAdapter_EndToEnd(t *testing.T) {
	ctx := context.Background()
	a := openMemory(t)

	affected, err := a.ExecuteRaw(ctx, &core.Query{
		SQL:  "UPDATE users SET score = ? WHERE name = ?",
		Args: []any{9.75, "ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rs, err := a.QueryRaw(ctx, &core.Query{
		SQL: "SELECT id, name, score FROM users ORDER BY id",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score"}, rs.Columns)
	assert.Equal(t, []core.ColumnType{core.TypeInt64, core.TypeText, core.TypeDouble}, rs.Types)
	require.Len(t, rs.Rows, 2)

	// Large integers serialize as decimal text; strings and doubles pass
	// through natively.
	assert.Equal(t, []any{"1", "ada", 9.75}, rs.Rows[0])
	assert.Equal(t, []any{"2", "grace", 8.25}, rs.Rows[1])
}

func TestAdapter_EmptyResult(t *testing.T) {
	ctx := context.Background()
	a := openMemory(t)

	rs, err := a.QueryRaw(ctx, &core.Query{
		SQL:  "SELECT id, name FROM users WHERE name = ?",
		Args: []any{"nobody"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, rs.Columns)
	assert.Empty(t, rs.Rows)
}

func TestAdapter_TransactionCommit(t *testing.T) {
	ctx := context.Background()
	a := openMemory(t)

	tx, err := a.StartTransaction(ctx, nil)
	require.NoError(t, err)

	affected, err := tx.ExecuteRaw(ctx, &core.Query{
		SQL:  "INSERT INTO users (name, score) VALUES (?, ?)",
		Args: []any{"linus", 7.0},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NoError(t, tx.Commit(ctx))

	rs, err := a.QueryRaw(ctx, &core.Query{SQL: "SELECT COUNT(*) AS n FROM users"})
	require.NoError(t, err)
	assert.Equal(t, []any{"3"}, rs.Rows[0])
}

func TestAdapter_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	a := openMemory(t)

	tx, err := a.StartTransaction(ctx, nil)
	require.NoError(t, err)

	_, err = tx.ExecuteRaw(ctx, &core.Query{SQL: "DELETE FROM users"})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	rs, err := a.QueryRaw(ctx, &core.Query{SQL: "SELECT COUNT(*) AS n FROM users"})
	require.NoError(t, err)
	assert.Equal(t, []any{"2"}, rs.Rows[0])
}

func TestAdapter_IsolationRejected(t *testing.T) {
	ctx := context.Background()
	a := openMemory(t)

	_, err := a.StartTransaction(ctx, &adapter.TxOptions{IsolationLevel: "serializable"})
	require.ErrorIs(t, err, adapter.ErrIsolationUnsupported)
}

func TestAdapter_DisposeRejectsFurtherUse(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, adapter.Config{URL: ":memory:"}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	require.NoError(t, a.Dispose(ctx))

	_, err = a.QueryRaw(ctx, &core.Query{SQL: "SELECT 1"})
	require.ErrorIs(t, err, pool.ErrDisposed)
}
