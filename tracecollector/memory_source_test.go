package tracecollector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySourcePreservesOrder(t *testing.T) {
	m := NewMemorySource(2, 10*time.Millisecond)
	for i := range 5 {
		m.Push([]byte{byte(i)})
	}

	var got []byte
	for len(got) < 5 {
		batch, err := m.NextBatch(context.Background())
		require.NoError(t, err)
		assert.LessOrEqual(t, len(batch), 2)
		for _, s := range batch {
			got = append(got, s[0])
		}
	}
	assert.Equal(t, []byte{0, 1, 2, 3, 4}, got)
}

func TestMemorySourceIdleReturnsEmpty(t *testing.T) {
	m := NewMemorySource(4, 5*time.Millisecond)

	start := time.Now()
	batch, err := m.NextBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestMemorySourceWakesOnPush(t *testing.T) {
	m := NewMemorySource(4, time.Minute)

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Push([]byte{42})
	}()

	batch, err := m.NextBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, byte(42), batch[0][0])
}

func TestMemorySourceCancel(t *testing.T) {
	m := NewMemorySource(4, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.NextBatch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemorySourceClosed(t *testing.T) {
	m := NewMemorySource(4, time.Millisecond)
	require.NoError(t, m.Close())

	_, err := m.NextBatch(context.Background())
	assert.ErrorIs(t, err, ErrSourceClosed)
}

func TestMemorySourceDrain(t *testing.T) {
	m := NewMemorySource(1, time.Millisecond)
	m.Push([]byte{1}, []byte{2}, []byte{3})

	n, err := m.Drain()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	batch, err := m.NextBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch)

	require.NoError(t, m.Close())
	_, err = m.Drain()
	assert.ErrorIs(t, err, ErrSourceClosed)
}
