package adapter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlbridge/internal/testutil"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient/clientmock"
	"github.com/leapstack-labs/sqlbridge/pkg/pool"
)

func TestBase_QueryRaw_RepeatedPlaceholder(t *testing.T) {
	mock := clientmock.New()
	mock.Result = &hostclient.Result{
		Columns: []string{"label", "label2"},
		Rows:    [][]any{{"x", "x"}},
		Count:   1,
	}
	b := NewBase(*dialect.Postgres, mock, Config{}, testutil.NewTestLogger(t))

	rs, err := b.QueryRaw(context.Background(), &core.Query{
		SQL:  "SELECT $1 as label, $1 as label2",
		Args: []any{"x"},
	})

	require.NoError(t, err)

	// One argument feeds both slots.
	stmts := mock.Statements()
	require.Len(t, stmts, 1)
	assert.Len(t, stmts[0].Fragments, 3)
	assert.Equal(t, []any{"x", "x"}, stmts[0].Values)

	assert.Equal(t, []string{"label", "label2"}, rs.Columns)
	assert.Equal(t, []core.ColumnType{core.TypeText, core.TypeText}, rs.Types)
	assert.Equal(t, [][]any{{"x", "x"}}, rs.Rows)
}

func TestBase_QueryRaw_ArrayCoercedOnFallback(t *testing.T) {
	mock := clientmock.New()
	b := NewBase(*dialect.Postgres, mock, Config{}, testutil.NewTestLogger(t))

	// No recognized markers, but the array argument still coerces for the
	// host's own interpolation mechanism.
	_, err := b.QueryRaw(context.Background(), &core.Query{
		SQL:  "SELECT * FROM items WHERE tags && :tags",
		Args: []any{[]any{"a", "b"}},
	})

	require.NoError(t, err)
	stmts := mock.Statements()
	require.Len(t, stmts, 1)
	assert.Equal(t, []string{"SELECT * FROM items WHERE tags && :tags"}, stmts[0].Fragments)
	assert.Equal(t, []any{`{"a","b"}`}, stmts[0].Values)
}

func TestBase_QueryRaw_QuestionCountMismatchFallsBack(t *testing.T) {
	mock := clientmock.New()
	b := NewBase(*dialect.SQLite, mock, Config{}, testutil.NewTestLogger(t))

	_, err := b.QueryRaw(context.Background(), &core.Query{
		SQL:  "SELECT * FROM t WHERE a = ? AND b = ?",
		Args: []any{1, 2, 3},
	})

	require.NoError(t, err)
	stmts := mock.Statements()
	require.Len(t, stmts, 1)
	assert.Len(t, stmts[0].Fragments, 1, "count mismatch must not truncate or pad")
	assert.Equal(t, []any{1, 2, 3}, stmts[0].Values)
}

func TestBase_QueryRaw_EmptyResultShape(t *testing.T) {
	mock := clientmock.New()
	b := NewBase(*dialect.Postgres, mock, Config{}, testutil.NewTestLogger(t))

	rs, err := b.QueryRaw(context.Background(), &core.Query{SQL: "SELECT 1 WHERE false"})

	require.NoError(t, err)
	assert.NotNil(t, rs.Columns)
	assert.NotNil(t, rs.Types)
	assert.NotNil(t, rs.Rows)
	assert.Empty(t, rs.Rows)
}

func TestBase_QueryRaw_HostErrorPropagates(t *testing.T) {
	mock := clientmock.New()
	mock.ExecuteFunc = func(context.Context, *hostclient.Statement) (*hostclient.Result, error) {
		return nil, assert.AnError
	}
	b := NewBase(*dialect.Postgres, mock, Config{}, testutil.NewTestLogger(t))

	_, err := b.QueryRaw(context.Background(), &core.Query{SQL: "SELECT 1"})

	assert.ErrorIs(t, err, assert.AnError)
}

func TestBase_ExecuteRaw_AffectedFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		result *hostclient.Result
		want   int64
	}{
		{"affected rows wins", &hostclient.Result{AffectedRows: 5, Count: 2}, 5},
		{"count fallback", &hostclient.Result{Count: 3}, 3},
		{"zero when neither reported", &hostclient.Result{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := clientmock.New()
			mock.Result = tt.result
			b := NewBase(*dialect.MySQL, mock, Config{}, testutil.NewTestLogger(t))

			got, err := b.ExecuteRaw(context.Background(), &core.Query{
				SQL:  "UPDATE t SET a = ?",
				Args: []any{1},
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBase_ExecuteScript(t *testing.T) {
	mock := clientmock.New()
	b := NewBase(*dialect.SQLite, mock, Config{}, testutil.NewTestLogger(t))

	script := "CREATE TABLE logs (id integer, msg text);\nINSERT INTO logs VALUES (1, 'a;b');\n"
	require.NoError(t, b.ExecuteScript(context.Background(), script))

	assert.Equal(t, []string{
		"CREATE TABLE logs (id integer, msg text)",
		"INSERT INTO logs VALUES (1, 'a;b')",
	}, mock.SQL())
	assert.Equal(t, 1, mock.Reserves(), "the whole script shares one connection")
}

func TestBase_ExecuteScript_StopsOnFirstFailure(t *testing.T) {
	mock := clientmock.New()
	mock.ExecuteFunc = func(_ context.Context, stmt *hostclient.Statement) (*hostclient.Result, error) {
		if strings.HasPrefix(stmt.Fragments[0], "INSERT") {
			return nil, errors.New("constraint violated")
		}
		return &hostclient.Result{}, nil
	}
	b := NewBase(*dialect.SQLite, mock, Config{}, testutil.NewTestLogger(t))

	err := b.ExecuteScript(context.Background(), "CREATE TABLE t (a int); INSERT INTO t VALUES (1); DROP TABLE t;")

	require.Error(t, err)
	assert.ErrorContains(t, err, "script statement failed")
	assert.Equal(t, []string{"CREATE TABLE t (a int)", "INSERT INTO t VALUES (1)"}, mock.SQL())
}

func TestBase_ExecuteScript_EmptyScript(t *testing.T) {
	mock := clientmock.New()
	b := NewBase(*dialect.SQLite, mock, Config{}, testutil.NewTestLogger(t))

	require.NoError(t, b.ExecuteScript(context.Background(), " \n\t  \n"))
	assert.Zero(t, mock.Reserves())
}

func TestBase_TemplateCacheReuse(t *testing.T) {
	mock := clientmock.New()
	b := NewBase(*dialect.Postgres, mock, Config{}, testutil.NewTestLogger(t))
	ctx := context.Background()
	q := &core.Query{SQL: "SELECT $1", Args: []any{1}}

	_, err := b.QueryRaw(ctx, q)
	require.NoError(t, err)
	_, err = b.QueryRaw(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 1, b.Cache.Len())
}

func TestBase_Dispose(t *testing.T) {
	mock := clientmock.New()
	b := NewBase(*dialect.Postgres, mock, Config{}, testutil.NewTestLogger(t))
	ctx := context.Background()

	_, err := b.QueryRaw(ctx, &core.Query{SQL: "SELECT $1", Args: []any{1}})
	require.NoError(t, err)
	require.Equal(t, 1, b.Cache.Len())

	require.NoError(t, b.Dispose(ctx))

	assert.Equal(t, 1, mock.Closed())
	assert.Equal(t, 1, mock.Released(), "idle pooled connection returns to the host")
	assert.Zero(t, b.Cache.Len())

	_, err = b.QueryRaw(ctx, &core.Query{SQL: "SELECT 1"})
	assert.ErrorIs(t, err, pool.ErrDisposed)
}

func TestNewBase_Defaults(t *testing.T) {
	mock := clientmock.New()

	b := NewBase(*dialect.Postgres, mock, Config{}, nil)

	assert.NotNil(t, b.Cache)
	assert.NotNil(t, b.Logger)
	assert.NotNil(t, b.Pool)
}
