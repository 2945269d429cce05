// Package bridgehost is the host side of the bridge transport. It decodes
// request payloads produced by bridge.Client, dispatches them onto any
// hostclient.Client, and renders results back into wire-safe JSON. Reserved
// connections are tracked by generated id for the guest to address.
package bridgehost

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient/bridge"
)

var jsonStd = jsoniter.ConfigCompatibleWithStandardLibrary

// Host dispatches bridge requests onto a wrapped client.
type Host struct {
	client hostclient.Client
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]hostclient.ReservedConn
}

// New wraps a client for bridge dispatch.
func New(client hostclient.Client, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Host{
		client: client,
		logger: logger,
		conns:  make(map[string]hostclient.ReservedConn),
	}
}

// HandleRequest processes one raw request payload and returns the response
// payload. Operational failures are packaged into the response envelope;
// the returned error is reserved for failures to produce a payload at all.
// The signature matches bridge.HostCallFunc so a Host can be injected
// directly into a bridge.Client.
func (h *Host) HandleRequest(payload []byte) ([]byte, error) {
	ctx := context.Background()

	var req bridge.Request
	if err := jsonStd.Unmarshal(payload, &req); err != nil {
		return marshalErrorResponse(fmt.Sprintf("failed to unmarshal request: %v", err))
	}

	var resp *bridge.Response
	var opErr error

	switch req.Op {
	case bridge.OpExecute:
		resp, opErr = h.handleExecute(ctx, &req)
	case bridge.OpReserve:
		resp, opErr = h.handleReserve(ctx)
	case bridge.OpConnExecute:
		resp, opErr = h.handleConnExecute(ctx, &req)
	case bridge.OpConnRelease:
		resp, opErr = h.handleConnRelease(ctx, &req)
	case bridge.OpClose:
		resp, opErr = h.handleClose(ctx)
	default:
		opErr = fmt.Errorf("unknown op: %s", req.Op)
	}

	if opErr != nil {
		return marshalErrorResponse(opErr.Error())
	}
	return jsonStd.Marshal(resp)
}

func marshalErrorResponse(msg string) ([]byte, error) {
	payload, err := jsonStd.Marshal(&bridge.Response{Error: msg})
	if err != nil {
		return []byte(fmt.Sprintf(`{"error":%q}`, msg)),
			fmt.Errorf("failed to marshal error response for %q: %w", msg, err)
	}
	return payload, nil
}

func (h *Host) handleExecute(ctx context.Context, req *bridge.Request) (*bridge.Response, error) {
	stmt, err := decodeStatement(req.Statement)
	if err != nil {
		return nil, err
	}
	res, err := h.client.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return &bridge.Response{Result: encodeResult(res)}, nil
}

func (h *Host) handleReserve(ctx context.Context) (*bridge.Response, error) {
	conn, err := h.client.Reserve(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.conns[id] = conn
	h.mu.Unlock()

	h.logger.Debug("connection reserved", "conn_id", id)
	return &bridge.Response{ConnID: id}, nil
}

func (h *Host) handleConnExecute(ctx context.Context, req *bridge.Request) (*bridge.Response, error) {
	h.mu.Lock()
	conn, ok := h.conns[req.ConnID]
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("connection not found: %s", req.ConnID)
	}

	stmt, err := decodeStatement(req.Statement)
	if err != nil {
		return nil, err
	}
	res, err := conn.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return &bridge.Response{Result: encodeResult(res)}, nil
}

func (h *Host) handleConnRelease(ctx context.Context, req *bridge.Request) (*bridge.Response, error) {
	h.mu.Lock()
	conn, ok := h.conns[req.ConnID]
	if ok {
		delete(h.conns, req.ConnID)
	}
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("connection not found: %s", req.ConnID)
	}

	if err := conn.Release(ctx); err != nil {
		return nil, fmt.Errorf("release failed: %w", err)
	}
	h.logger.Debug("connection released", "conn_id", req.ConnID)
	return &bridge.Response{}, nil
}

// handleClose releases every tracked connection best-effort, then closes
// the wrapped client.
func (h *Host) handleClose(ctx context.Context) (*bridge.Response, error) {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]hostclient.ReservedConn)
	h.mu.Unlock()

	for id, conn := range conns {
		if err := conn.Release(ctx); err != nil {
			h.logger.Debug("release during close failed", "conn_id", id, "error", err)
		}
	}

	if err := h.client.Close(ctx); err != nil {
		return nil, err
	}
	return &bridge.Response{}, nil
}

func decodeStatement(ws *bridge.WireStatement) (*hostclient.Statement, error) {
	if ws == nil {
		return nil, fmt.Errorf("missing statement")
	}
	return &hostclient.Statement{
		Fragments: ws.Fragments,
		Values:    ws.Values,
	}, nil
}

// encodeResult renders a result wire-safe: binary cells become base64 text
// and time cells RFC 3339 text, mirroring the statement-value encoding on
// the guest side.
func encodeResult(res *hostclient.Result) *bridge.WireResult {
	wr := &bridge.WireResult{
		Columns:      res.Columns,
		Count:        res.Count,
		Command:      res.Command,
		AffectedRows: res.AffectedRows,
		LastInsertID: res.LastInsertID,
	}
	if len(res.Rows) > 0 {
		wr.Rows = make([][]any, len(res.Rows))
		for i, row := range res.Rows {
			encoded := make([]any, len(row))
			for j, v := range row {
				encoded[j] = encodeValue(v)
			}
			wr.Rows[i] = encoded
		}
	}
	return wr
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
