// Package bridge implements hostclient.Client over a single injected
// host-call function, for guests embedded in a runtime that exposes its SQL
// capability through a byte-level boundary. Requests and responses travel
// as JSON; the wire types here are shared with the host-side handler in
// bridgehost.
//
// JSON flattens value types: binary crosses as base64 text, times as
// RFC 3339 text, and integers arrive back as float64. Callers that need
// full type fidelity should run against dbclient instead.
package bridge

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
)

var jsonStd = jsoniter.ConfigCompatibleWithStandardLibrary

// HostCallFunc carries one request payload to the host and returns the
// response payload. The host side of the pair is bridgehost.Host.
type HostCallFunc func(request []byte) (response []byte, err error)

// Op values on the wire.
const (
	OpExecute     = "execute"
	OpReserve     = "reserve"
	OpConnExecute = "conn_execute"
	OpConnRelease = "conn_release"
	OpClose       = "close"
)

// Request is the wire form of one host call.
type Request struct {
	Op        string         `json:"op"`
	ConnID    string         `json:"conn_id,omitempty"`
	Statement *WireStatement `json:"statement,omitempty"`
}

// WireStatement mirrors hostclient.Statement with wire-safe values.
type WireStatement struct {
	Fragments []string `json:"fragments"`
	Values    []any    `json:"values,omitempty"`
}

// Response is the wire form of one host answer. A non-empty Error carries
// the operational failure; transport-level failures surface as Go errors
// from the call function itself.
type Response struct {
	Error  string      `json:"error,omitempty"`
	ConnID string      `json:"conn_id,omitempty"`
	Result *WireResult `json:"result,omitempty"`
}

// WireResult mirrors hostclient.Result with wire-safe row values.
type WireResult struct {
	Columns      []string `json:"columns,omitempty"`
	Rows         [][]any  `json:"rows,omitempty"`
	Count        int      `json:"count,omitempty"`
	Command      string   `json:"command,omitempty"`
	AffectedRows int64    `json:"affected_rows,omitempty"`
	LastInsertID int64    `json:"last_insert_id,omitempty"`
}

// Client implements hostclient.Client over one host-call function.
type Client struct {
	call   HostCallFunc
	logger *slog.Logger
}

var _ hostclient.Client = (*Client)(nil)

// New wraps the injected host-call function. A nil function means the
// runtime did not provide the SQL capability.
func New(call HostCallFunc, logger *slog.Logger) (*Client, error) {
	if call == nil {
		return nil, fmt.Errorf("%w: no host-call function injected", hostclient.ErrHostUnavailable)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{call: call, logger: logger}, nil
}

func (c *Client) Execute(ctx context.Context, stmt *hostclient.Statement) (*hostclient.Result, error) {
	resp, err := c.roundTrip(ctx, &Request{Op: OpExecute, Statement: EncodeStatement(stmt)})
	if err != nil {
		return nil, err
	}
	return decodeResult(resp.Result), nil
}

func (c *Client) Reserve(ctx context.Context) (hostclient.ReservedConn, error) {
	resp, err := c.roundTrip(ctx, &Request{Op: OpReserve})
	if err != nil {
		return nil, err
	}
	if resp.ConnID == "" {
		return nil, fmt.Errorf("host did not return a connection id")
	}
	return &reservedConn{client: c, id: resp.ConnID}, nil
}

func (c *Client) Close(ctx context.Context) error {
	_, err := c.roundTrip(ctx, &Request{Op: OpClose})
	return err
}

// roundTrip marshals, calls the host, and unwraps the response envelope.
// The host call itself is synchronous; cancellation is honored at the call
// boundary.
func (c *Client) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := jsonStd.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", req.Op, err)
	}

	respPayload, err := c.call(payload)
	if err != nil {
		return nil, fmt.Errorf("host call for %s failed: %w", req.Op, err)
	}

	var resp Response
	if err := jsonStd.Unmarshal(respPayload, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s response: %w", req.Op, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("host error: %s", resp.Error)
	}
	return &resp, nil
}

// EncodeStatement converts a statement to its wire form. Binary values
// become base64 text and times become RFC 3339 text; the host binds them in
// that form.
func EncodeStatement(stmt *hostclient.Statement) *WireStatement {
	ws := &WireStatement{
		Fragments: append([]string(nil), stmt.Fragments...),
	}
	if len(stmt.Values) > 0 {
		ws.Values = make([]any, len(stmt.Values))
		for i, v := range stmt.Values {
			ws.Values[i] = encodeValue(v)
		}
	}
	return ws
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

func decodeResult(wr *WireResult) *hostclient.Result {
	if wr == nil {
		return &hostclient.Result{}
	}
	return &hostclient.Result{
		Columns:      wr.Columns,
		Rows:         wr.Rows,
		Count:        wr.Count,
		Command:      wr.Command,
		AffectedRows: wr.AffectedRows,
		LastInsertID: wr.LastInsertID,
	}
}

// reservedConn proxies statements to a host-tracked connection by id.
type reservedConn struct {
	client *Client
	id     string
}

var _ hostclient.ReservedConn = (*reservedConn)(nil)

func (r *reservedConn) Execute(ctx context.Context, stmt *hostclient.Statement) (*hostclient.Result, error) {
	resp, err := r.client.roundTrip(ctx, &Request{
		Op:        OpConnExecute,
		ConnID:    r.id,
		Statement: EncodeStatement(stmt),
	})
	if err != nil {
		return nil, err
	}
	return decodeResult(resp.Result), nil
}

func (r *reservedConn) Release(ctx context.Context) error {
	_, err := r.client.roundTrip(ctx, &Request{Op: OpConnRelease, ConnID: r.id})
	return err
}
