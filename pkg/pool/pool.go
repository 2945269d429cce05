// Package pool bounds the number of reserved host connections an adapter
// holds. Connections are created lazily up to the cap; acquirers beyond the
// cap wait in FIFO order and released connections hand off to the oldest
// waiter first.
package pool

import (
	"container/list"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
)

// ErrDisposed reports an operation on a disposed pool. Waiters pending at
// dispose time fail with it as well.
var ErrDisposed = errors.New("pool disposed")

type result struct {
	conn hostclient.ReservedConn
	err  error
}

// waiter is one queued acquirer. ready is buffered so producers never
// block; delivered marks that something was sent, letting a cancelled
// waiter re-route it.
type waiter struct {
	ready     chan result
	delivered bool
}

// Pool hands out reserved connections from a host client, at most max at a
// time. All methods are safe for concurrent use.
type Pool struct {
	client hostclient.Client
	max    int
	logger *slog.Logger

	mu       sync.Mutex
	free     []hostclient.ReservedConn
	waiters  *list.List
	live     int
	disposed bool
}

// New builds a pool over the client. max caps the reserved connections; a
// cap below one is raised to one.
func New(client hostclient.Client, max int, logger *slog.Logger) *Pool {
	if max < 1 {
		max = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pool{
		client:  client,
		max:     max,
		logger:  logger,
		waiters: list.New(),
	}
}

// Acquire returns a reserved connection, creating one lazily while under
// the cap. At the cap it blocks in FIFO order until a connection is
// released or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (hostclient.ReservedConn, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p.mu.Lock()
		if p.disposed {
			p.mu.Unlock()
			return nil, ErrDisposed
		}
		if len(p.free) > 0 {
			conn := p.free[0]
			p.free = p.free[1:]
			p.mu.Unlock()
			return conn, nil
		}
		if p.live < p.max {
			p.live++
			live := p.live
			p.mu.Unlock()
			conn, err := p.client.Reserve(ctx)
			if err != nil {
				p.mu.Lock()
				p.live--
				// The slot reopened; let the oldest waiter retry.
				p.wakeOne()
				p.mu.Unlock()
				return nil, err
			}
			p.logger.Debug("connection reserved", "live", live)
			return conn, nil
		}

		w := &waiter{ready: make(chan result, 1)}
		elem := p.waiters.PushBack(w)
		p.mu.Unlock()

		select {
		case res := <-w.ready:
			if res.err != nil {
				return nil, res.err
			}
			if res.conn != nil {
				return res.conn, nil
			}
			// Retry signal: a creation slot opened.
		case <-ctx.Done():
			p.mu.Lock()
			if w.delivered {
				// Lost the race with a producer; what was sent is
				// already buffered. Pass a connection on rather than
				// leaking it.
				res := <-w.ready
				if res.conn != nil {
					p.handOff(res.conn)
				}
			} else {
				p.waiters.Remove(elem)
			}
			p.mu.Unlock()
			return nil, ctx.Err()
		}
	}
}

// Release returns a connection to the pool. The oldest waiter gets it
// directly; with nobody waiting it joins the free list. After dispose the
// connection goes straight back to the host.
func (p *Pool) Release(ctx context.Context, conn hostclient.ReservedConn) error {
	p.mu.Lock()
	if p.disposed {
		p.live--
		p.mu.Unlock()
		return conn.Release(ctx)
	}
	p.handOff(conn)
	p.mu.Unlock()
	return nil
}

// Dispose rejects all pending waiters, releases the idle connections
// concurrently, and marks the pool unusable. Connections still checked out
// return to the host when their holders release them. Dispose is
// idempotent; it returns the first host release error.
func (p *Pool) Dispose(ctx context.Context) error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true
	for e := p.waiters.Front(); e != nil; e = p.waiters.Front() {
		w := e.Value.(*waiter)
		p.waiters.Remove(e)
		w.delivered = true
		w.ready <- result{err: ErrDisposed}
	}
	idle := p.free
	p.free = nil
	p.live -= len(idle)
	p.mu.Unlock()

	g := new(errgroup.Group)
	for _, conn := range idle {
		conn := conn
		g.Go(func() error {
			return conn.Release(ctx)
		})
	}
	err := g.Wait()
	if err != nil {
		p.logger.Debug("release during dispose failed", "error", err)
	}
	p.logger.Debug("pool disposed", "idle_released", len(idle))
	return err
}

// handOff gives a live connection to the oldest waiter, or parks it on the
// free list. Caller holds mu.
func (p *Pool) handOff(conn hostclient.ReservedConn) {
	if e := p.waiters.Front(); e != nil {
		w := e.Value.(*waiter)
		p.waiters.Remove(e)
		w.delivered = true
		w.ready <- result{conn: conn}
		return
	}
	p.free = append(p.free, conn)
}

// wakeOne signals the oldest waiter to retry acquisition. Caller holds mu.
func (p *Pool) wakeOne() {
	if e := p.waiters.Front(); e != nil {
		w := e.Value.(*waiter)
		p.waiters.Remove(e)
		w.delivered = true
		w.ready <- result{}
	}
}
