package dbclient

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		stmt     hostclient.Statement
		style    core.PlaceholderStyle
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "dollar fragments",
			stmt: hostclient.Statement{
				Fragments: []string{"SELECT name FROM users WHERE id = ", " AND org = ", ""},
				Values:    []any{7, "acme"},
			},
			style:    core.PlaceholderDollar,
			wantSQL:  "SELECT name FROM users WHERE id = $1 AND org = $2",
			wantArgs: []any{7, "acme"},
		},
		{
			name: "question fragments",
			stmt: hostclient.Statement{
				Fragments: []string{"SELECT name FROM users WHERE id = ", ""},
				Values:    []any{7},
			},
			style:    core.PlaceholderQuestion,
			wantSQL:  "SELECT name FROM users WHERE id = ?",
			wantArgs: []any{7},
		},
		{
			name: "repeated slots render distinct markers",
			stmt: hostclient.Statement{
				Fragments: []string{"SELECT ", " as a, ", " as b"},
				Values:    []any{"x", "x"},
			},
			style:    core.PlaceholderDollar,
			wantSQL:  "SELECT $1 as a, $2 as b",
			wantArgs: []any{"x", "x"},
		},
		{
			name: "raw fallback passes through",
			stmt: hostclient.Statement{
				Fragments: []string{"SELECT :id FROM t"},
				Values:    []any{7},
			},
			style:    core.PlaceholderDollar,
			wantSQL:  "SELECT :id FROM t",
			wantArgs: []any{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs := render(&tt.stmt, tt.style)
			assert.Equal(t, tt.wantSQL, gotSQL)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		{"select", "SELECT 1", true},
		{"cte", "WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"pragma", "PRAGMA table_info(users)", true},
		{"leading line comment", "-- latest\nSELECT 1", true},
		{"leading block comment", "/* hint */ SELECT 1", true},
		{"insert", "INSERT INTO t (a) VALUES (1)", false},
		{"update", "UPDATE t SET a = 1", false},
		{"insert returning", "INSERT INTO t (a) VALUES (1) RETURNING id", true},
		{"create table", "CREATE TABLE t (a int)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, returnsRows(tt.sql))
		})
	}
}

func TestClient_Execute_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM users WHERE org = $1")).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "alice").
			AddRow(int64(2), "bob"))

	client := New(db, core.PlaceholderDollar, nil)
	res, err := client.Execute(context.Background(), &hostclient.Statement{
		Fragments: []string{"SELECT id, name FROM users WHERE org = ", ""},
		Values:    []any{"acme"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, [][]any{{int64(1), "alice"}, {int64(2), "bob"}}, res.Rows)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "SELECT", res.Command)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Execute_Exec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name) VALUES (?)")).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(7, 1))

	client := New(db, core.PlaceholderQuestion, nil)
	res, err := client.Execute(context.Background(), &hostclient.Statement{
		Fragments: []string{"INSERT INTO users (name) VALUES (", ")"},
		Values:    []any{"alice"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.AffectedRows)
	assert.Equal(t, int64(7), res.LastInsertID)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "INSERT", res.Command)
	assert.Empty(t, res.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Execute_RawFallback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE t SET a = ?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 3))

	client := New(db, core.PlaceholderQuestion, nil)
	res, err := client.Execute(context.Background(), &hostclient.Statement{
		Fragments: []string{"UPDATE t SET a = ?"},
		Values:    []any{5},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), res.AffectedRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Reserve(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("BEGIN").WillReturnResult(sqlmock.NewResult(0, 0))

	client := New(db, core.PlaceholderQuestion, nil)
	conn, err := client.Reserve(context.Background())
	require.NoError(t, err)

	_, err = conn.Execute(context.Background(), &hostclient.Statement{Fragments: []string{"BEGIN"}})
	require.NoError(t, err)
	require.NoError(t, conn.Release(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectClose()

	client := New(db, core.PlaceholderQuestion, nil)
	require.NoError(t, client.Close(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
