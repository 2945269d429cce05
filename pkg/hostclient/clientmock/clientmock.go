// Package clientmock provides a scriptable hostclient.Client for tests.
// Behavior is injected through optional function fields; every executed
// statement is recorded in call order so tests can assert exactly what
// reached the host.
package clientmock

import (
	"context"
	"sync"

	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
)

// Client implements hostclient.Client. The zero value is usable: Execute
// answers every statement with an empty result and Reserve hands out
// recording connections.
type Client struct {
	// ExecuteFunc, when set, decides the outcome of every Execute call,
	// including calls made through reserved connections. The statement is
	// recorded before it runs.
	ExecuteFunc func(ctx context.Context, stmt *hostclient.Statement) (*hostclient.Result, error)

	// ReserveFunc, when set, replaces the default connection handout.
	ReserveFunc func(ctx context.Context) (hostclient.ReservedConn, error)

	// CloseFunc, when set, decides the outcome of Close.
	CloseFunc func(ctx context.Context) error

	// Result is returned by Execute when ExecuteFunc is nil. Nil means an
	// empty result.
	Result *hostclient.Result

	mu         sync.Mutex
	statements []hostclient.Statement
	conns      []*Conn
	closed     int
}

var _ hostclient.Client = (*Client)(nil)

// New returns an empty recording client.
func New() *Client {
	return &Client{}
}

func (c *Client) Execute(ctx context.Context, stmt *hostclient.Statement) (*hostclient.Result, error) {
	c.record(stmt)
	return c.answer(ctx, stmt)
}

func (c *Client) Reserve(ctx context.Context) (hostclient.ReservedConn, error) {
	if c.ReserveFunc != nil {
		return c.ReserveFunc(ctx)
	}
	conn := &Conn{client: c}
	c.mu.Lock()
	c.conns = append(c.conns, conn)
	c.mu.Unlock()
	return conn, nil
}

func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	if c.CloseFunc != nil {
		return c.CloseFunc(ctx)
	}
	return nil
}

// Statements returns a copy of every executed statement, pooled and
// reserved alike, in the order they reached the client.
func (c *Client) Statements() []hostclient.Statement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]hostclient.Statement(nil), c.statements...)
}

// SQL returns the first fragment of every executed statement, a convenient
// shape for asserting statement order.
func (c *Client) SQL() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.statements))
	for i, stmt := range c.statements {
		out[i] = stmt.Fragments[0]
	}
	return out
}

// Conns returns every connection handed out by Reserve, in handout order.
func (c *Client) Conns() []*Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Conn(nil), c.conns...)
}

// Reserves reports how many connections Reserve handed out.
func (c *Client) Reserves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns)
}

// Released sums the Release calls across every handed-out connection.
func (c *Client) Released() int {
	c.mu.Lock()
	conns := append([]*Conn(nil), c.conns...)
	c.mu.Unlock()
	total := 0
	for _, conn := range conns {
		total += conn.Releases()
	}
	return total
}

// Closed reports how many times Close was called.
func (c *Client) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) record(stmt *hostclient.Statement) {
	cp := hostclient.Statement{
		Fragments: append([]string(nil), stmt.Fragments...),
		Values:    append([]any(nil), stmt.Values...),
	}
	c.mu.Lock()
	c.statements = append(c.statements, cp)
	c.mu.Unlock()
}

func (c *Client) answer(ctx context.Context, stmt *hostclient.Statement) (*hostclient.Result, error) {
	if c.ExecuteFunc != nil {
		return c.ExecuteFunc(ctx, stmt)
	}
	if c.Result != nil {
		return c.Result, nil
	}
	return &hostclient.Result{}, nil
}

// Conn is a reserved connection handed out by Client.Reserve. Statements
// route through the owning client's script and recording; Release calls are
// counted per connection.
type Conn struct {
	client *Client

	mu       sync.Mutex
	releases int
}

var _ hostclient.ReservedConn = (*Conn)(nil)

func (c *Conn) Execute(ctx context.Context, stmt *hostclient.Statement) (*hostclient.Result, error) {
	c.client.record(stmt)
	return c.client.answer(ctx, stmt)
}

func (c *Conn) Release(context.Context) error {
	c.mu.Lock()
	c.releases++
	c.mu.Unlock()
	return nil
}

// Releases reports how many times this connection was released.
func (c *Conn) Releases() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.releases
}
