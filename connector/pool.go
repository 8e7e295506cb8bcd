package connector

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmexec/logger"
	"github.com/mensylisir/xmexec/util"
)

// Pool caches live connections by name so repeated lookups share one
// transport instead of dialing again.
type Pool struct {
	mu    sync.Mutex
	conns map[string]Connection
}

func NewPool() *Pool {
	return &Pool{conns: make(map[string]Connection)}
}

// Get returns the connection cached under key, dialing through connector
// when none exists yet. Concurrent callers may race the dial; the loser's
// connection is closed and the winner's is shared.
func (p *Pool) Get(ctx context.Context, key string, connector Connector) (Connection, error) {
	p.mu.Lock()
	if conn, ok := p.conns[key]; ok {
		p.mu.Unlock()
		logger.Log.DebugfConnection(key, "reusing pooled connection")
		return conn, nil
	}
	p.mu.Unlock()

	conn, err := connector.Connect(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect %q", key)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.conns[key]; ok {
		go conn.Close()
		return existing, nil
	}
	p.conns[key] = conn
	return conn, nil
}

// Remove closes and drops the connection cached under key. Removing an
// unknown key is a no-op.
func (p *Pool) Remove(key string) error {
	p.mu.Lock()
	conn, ok := p.conns[key]
	delete(p.conns, key)
	p.mu.Unlock()

	if !ok {
		return nil
	}
	return conn.Close()
}

// Len reports how many connections are pooled.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// CloseAll closes every pooled connection and empties the pool.
func (p *Pool) CloseAll() error {
	p.mu.Lock()
	drained := p.conns
	p.conns = make(map[string]Connection)
	p.mu.Unlock()

	var errs []error
	for key, conn := range drained {
		if err := conn.Close(); err != nil {
			errs = append(errs, errors.Wrapf(err, "failed to close connection %q", key))
		}
	}
	return util.CombineErrors(errs...)
}
