package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "two statements with trailing separator",
			script: "CREATE TABLE t (id INT);\nINSERT INTO t VALUES (1);",
			want:   []string{"CREATE TABLE t (id INT)", "INSERT INTO t VALUES (1)"},
		},
		{
			name:   "semicolon inside a string literal does not split",
			script: "INSERT INTO t VALUES ('a;b'); SELECT 1",
			want:   []string{"INSERT INTO t VALUES ('a;b')", "SELECT 1"},
		},
		{
			name:   "semicolon inside a comment does not split",
			script: "SELECT 1 /* one; two */; SELECT 2 -- done;",
			want:   []string{"SELECT 1 /* one; two */", "SELECT 2 -- done;"},
		},
		{
			name: "dollar-quoted function body keeps its semicolons",
			script: "CREATE FUNCTION f() RETURNS int AS $fn$ SELECT 1; $fn$ LANGUAGE sql;\n" +
				"SELECT f();",
			want: []string{
				"CREATE FUNCTION f() RETURNS int AS $fn$ SELECT 1; $fn$ LANGUAGE sql",
				"SELECT f()",
			},
		},
		{
			name:   "blank segments are dropped",
			script: " ;;  \n ; SELECT 1 ; ",
			want:   []string{"SELECT 1"},
		},
		{
			name:   "empty script",
			script: "   \n\t",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitStatements(tt.script))
		})
	}
}
