package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesQuery(t *testing.T) {
	tests := []struct {
		dialect string
		substr  string
	}{
		{"sqlite", "sqlite_master"},
		{"postgres", "information_schema.tables"},
		{"mysql", "information_schema.tables"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			q, err := tablesQuery(tt.dialect)
			require.NoError(t, err)
			assert.Contains(t, q.SQL, tt.substr)
			assert.Empty(t, q.Args)
		})
	}
}

func TestTablesQuery_UnknownDialect(t *testing.T) {
	_, err := tablesQuery("oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestSchemaQuery(t *testing.T) {
	t.Run("sqlite uses pragma", func(t *testing.T) {
		q, err := schemaQuery("sqlite", "users")
		require.NoError(t, err)
		assert.Equal(t, `PRAGMA table_info("users")`, q.SQL)
		assert.Empty(t, q.Args)
	})

	t.Run("postgres binds the table name", func(t *testing.T) {
		q, err := schemaQuery("postgres", "users")
		require.NoError(t, err)
		assert.Contains(t, q.SQL, "$1")
		assert.Equal(t, []any{"users"}, q.Args)
	})

	t.Run("mysql binds the table name", func(t *testing.T) {
		q, err := schemaQuery("mysql", "users")
		require.NoError(t, err)
		assert.Contains(t, q.SQL, "?")
		assert.Equal(t, []any{"users"}, q.Args)
	})

	t.Run("unknown dialect", func(t *testing.T) {
		_, err := schemaQuery("oracle", "users")
		require.Error(t, err)
	})
}
