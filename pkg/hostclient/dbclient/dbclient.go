// Package dbclient implements hostclient.Client over database/sql, giving
// the adapters a local host capability when no external runtime provides
// one. Statements arrive in fragment form and are rendered to the backend's
// native placeholder convention before execution.
//
// Row-returning statements are recognized by their leading keyword, plus a
// RETURNING-clause check for writes that yield rows. Everything else runs
// through Exec so affected-row counts survive.
package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
)

var (
	queryShaped     = regexp.MustCompile(`(?is)^(select|with|show|values|explain|pragma|describe|desc|table)\b`)
	returningClause = regexp.MustCompile(`(?i)\breturning\b`)
	leadingKeyword  = regexp.MustCompile(`(?i)^[a-z]+`)
)

// Client executes statements against a database/sql handle.
type Client struct {
	db     *sql.DB
	style  core.PlaceholderStyle
	logger *slog.Logger
}

var _ hostclient.Client = (*Client)(nil)

// New wraps an open database handle. The style decides how interpolated
// fragments are rendered for the backend's driver.
func New(db *sql.DB, style core.PlaceholderStyle, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{db: db, style: style, logger: logger}
}

// Open opens a database handle for the named driver and verifies it with a
// ping before wrapping it.
func Open(ctx context.Context, driver, dsn string, style core.PlaceholderStyle, logger *slog.Logger) (*Client, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return New(db, style, logger), nil
}

func (c *Client) Execute(ctx context.Context, stmt *hostclient.Statement) (*hostclient.Result, error) {
	return executeOn(ctx, c.db, c.style, c.logger, stmt)
}

// Reserve pins one driver connection until Release.
func (c *Client) Reserve(ctx context.Context) (hostclient.ReservedConn, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection: %w", err)
	}
	return &reservedConn{conn: conn, style: c.style, logger: c.logger}, nil
}

func (c *Client) Close(context.Context) error {
	return c.db.Close()
}

// DB exposes the underlying handle so adapters can tune pool limits.
func (c *Client) DB() *sql.DB {
	return c.db
}

type reservedConn struct {
	conn   *sql.Conn
	style  core.PlaceholderStyle
	logger *slog.Logger
}

var _ hostclient.ReservedConn = (*reservedConn)(nil)

func (r *reservedConn) Execute(ctx context.Context, stmt *hostclient.Statement) (*hostclient.Result, error) {
	return executeOn(ctx, r.conn, r.style, r.logger, stmt)
}

func (r *reservedConn) Release(context.Context) error {
	return r.conn.Close()
}

// querier is the execution surface shared by *sql.DB and *sql.Conn.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func executeOn(ctx context.Context, q querier, style core.PlaceholderStyle, logger *slog.Logger, stmt *hostclient.Statement) (*hostclient.Result, error) {
	sqlText, args := render(stmt, style)
	if returnsRows(sqlText) {
		return runQuery(ctx, q, logger, sqlText, args)
	}
	return runExec(ctx, q, logger, sqlText, args)
}

// render turns a statement into driver SQL plus positional args. Fragment
// form becomes $1..$n or ? markers in slot order; the raw form passes
// through untouched.
func render(stmt *hostclient.Statement, style core.PlaceholderStyle) (string, []any) {
	if !stmt.Interpolated() {
		return stmt.Fragments[0], stmt.Values
	}

	var b strings.Builder
	for i, frag := range stmt.Fragments {
		b.WriteString(frag)
		if i < len(stmt.Values) {
			if style == core.PlaceholderDollar {
				b.WriteByte('$')
				b.WriteString(strconv.Itoa(i + 1))
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String(), stmt.Values
}

func returnsRows(sqlText string) bool {
	head := stripLeadingComments(sqlText)
	if queryShaped.MatchString(head) {
		return true
	}
	return returningClause.MatchString(sqlText)
}

// stripLeadingComments skips whitespace and leading -- and /* */ comments so
// the dispatch keyword is the first real token.
func stripLeadingComments(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "--"):
			nl := strings.IndexByte(s, '\n')
			if nl < 0 {
				return ""
			}
			s = s[nl+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s[2:], "*/")
			if end < 0 {
				return ""
			}
			s = s[2+end+2:]
		default:
			return s
		}
	}
}

func runQuery(ctx context.Context, q querier, logger *slog.Logger, sqlText string, args []any) (*hostclient.Result, error) {
	rows, err := q.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	textual := textualColumns(rows, len(columns))

	var out [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				// Drivers may reuse the buffer between rows.
				if textual[i] {
					values[i] = string(b)
				} else {
					values[i] = append([]byte(nil), b...)
				}
			}
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	logger.Debug("query executed", "columns", len(columns), "rows", len(out))
	return &hostclient.Result{
		Columns: columns,
		Rows:    out,
		Count:   len(out),
		Command: commandTag(sqlText),
	}, nil
}

func runExec(ctx context.Context, q querier, logger *slog.Logger, sqlText string, args []any) (*hostclient.Result, error) {
	res, err := q.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("exec failed: %w", err)
	}

	// Not every driver reports these; zero is the documented absence value.
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		lastID = 0
	}

	logger.Debug("statement executed", "affected", affected)
	return &hostclient.Result{
		Count:        int(affected),
		Command:      commandTag(sqlText),
		AffectedRows: affected,
		LastInsertID: lastID,
	}, nil
}

// textualColumns marks columns whose driver type is character-like, so
// their []byte cells can come back as strings.
func textualColumns(rows *sql.Rows, n int) []bool {
	textual := make([]bool, n)
	types, err := rows.ColumnTypes()
	if err != nil || len(types) != n {
		return textual
	}
	for i, ct := range types {
		name := strings.ToUpper(ct.DatabaseTypeName())
		switch {
		case strings.Contains(name, "CHAR"), strings.Contains(name, "TEXT"),
			strings.Contains(name, "JSON"), strings.Contains(name, "UUID"),
			strings.Contains(name, "DECIMAL"), strings.Contains(name, "NUMERIC"),
			strings.Contains(name, "ENUM"), strings.Contains(name, "SET"):
			textual[i] = true
		}
	}
	return textual
}

func commandTag(sqlText string) string {
	head := stripLeadingComments(sqlText)
	if kw := leadingKeyword.FindString(head); kw != "" {
		return strings.ToUpper(kw)
	}
	return ""
}
