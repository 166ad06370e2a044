// tracecollector/memory_source.go
package tracecollector

import (
	"context"
	"sync"
	"time"
)

// Source is an append-only stream of raw probe records. NextBatch blocks for
// at most one poll interval and returns the records that arrived, possibly
// none, in emission order. Drain discards whatever is already queued without
// waiting and returns how many records it dropped.
type Source interface {
	NextBatch(ctx context.Context) ([][]byte, error)
	Drain() (int, error)
	Close() error
}

// MemorySource is a Source fed from memory. It replays pushed records in
// order, a few per batch, and behaves like an idle probe once drained.
type MemorySource struct {
	mu        sync.Mutex
	pending   [][]byte
	batchSize int
	idle      time.Duration
	closed    bool
	notify    chan struct{}
}

// NewMemorySource returns a source that hands out up to batchSize records per
// call and waits up to idle when empty.
func NewMemorySource(batchSize int, idle time.Duration) *MemorySource {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &MemorySource{
		batchSize: batchSize,
		idle:      idle,
		notify:    make(chan struct{}, 1),
	}
}

// Push appends records to the stream.
func (m *MemorySource) Push(samples ...[]byte) {
	m.mu.Lock()
	m.pending = append(m.pending, samples...)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// NextBatch implements Source.
func (m *MemorySource) NextBatch(ctx context.Context) ([][]byte, error) {
	if batch, err := m.take(); err != nil || len(batch) > 0 {
		return batch, err
	}

	timer := time.NewTimer(m.idle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	case <-m.notify:
	}
	return m.take()
}

func (m *MemorySource) take() ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrSourceClosed
	}
	n := min(m.batchSize, len(m.pending))
	batch := m.pending[:n:n]
	m.pending = m.pending[n:]
	return batch, nil
}

// Drain implements Source.
func (m *MemorySource) Drain() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrSourceClosed
	}
	n := len(m.pending)
	m.pending = nil
	return n, nil
}

// Close implements Source.
func (m *MemorySource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
