package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpulse/docpulse/internal/observability"
)

// fakeConn records writes; failWrites makes every write fail.
type fakeConn struct {
	mu         sync.Mutex
	writes     [][]byte
	failWrites bool
	closed     bool
}

func (c *fakeConn) WriteText(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return errors.New("broken pipe")
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	c.writes = append(c.writes, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.writes))
	copy(out, c.writes)
	return out
}

func (c *fakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestRegistry_RegisterMintsShortIDs(t *testing.T) {
	registry := NewRegistry(observability.NopLogger(), 8)

	id1 := registry.Register(&fakeConn{})
	id2 := registry.Register(&fakeConn{})

	assert.Len(t, id1, connIDLength)
	assert.Len(t, id2, connIDLength)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, registry.Count())
}

func TestRegistry_BroadcastReachesAllConnections(t *testing.T) {
	registry := NewRegistry(observability.NopLogger(), 8)
	conns := []*fakeConn{{}, {}, {}}
	for _, c := range conns {
		registry.Register(c)
	}

	registry.Broadcast([]byte("PAGE_COUNT:c1:3"))

	for _, c := range conns {
		require.Eventually(t, func() bool {
			return len(c.Writes()) == 1
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, "PAGE_COUNT:c1:3", string(c.Writes()[0]))
	}
}

func TestRegistry_BrokenConnectionIsPrunedOthersKeepReceiving(t *testing.T) {
	registry := NewRegistry(observability.NopLogger(), 8)
	healthy := &fakeConn{}
	broken := &fakeConn{failWrites: true}
	registry.Register(healthy)
	brokenID := registry.Register(broken)

	registry.Broadcast([]byte("DETECTION:c1:analyzing:0.1:3 pages detected"))

	// The failed write removes only the broken connection.
	require.Eventually(t, func() bool {
		return registry.Count() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, broken.Closed())
	assert.False(t, registry.SendTo(brokenID, []byte("x")))

	require.Eventually(t, func() bool {
		return len(healthy.Writes()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	registry.Broadcast([]byte("DETECTION:c1:completed:1:Detection completed"))
	require.Eventually(t, func() bool {
		return len(healthy.Writes()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegistry_SendTo(t *testing.T) {
	registry := NewRegistry(observability.NopLogger(), 8)
	conn := &fakeConn{}
	id := registry.Register(conn)

	assert.True(t, registry.SendTo(id, []byte("Your ID: "+id)))
	assert.False(t, registry.SendTo("nope42", []byte("x")))

	require.Eventually(t, func() bool {
		return len(conn.Writes()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Your ID: "+id, string(conn.Writes()[0]))
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	registry := NewRegistry(observability.NopLogger(), 8)
	conn := &fakeConn{}
	id := registry.Register(conn)

	registry.Unregister(id)
	registry.Unregister(id)

	assert.Equal(t, 0, registry.Count())
	assert.True(t, conn.Closed())
}

func TestRegistry_FullOutboxDropsOldest(t *testing.T) {
	registry := NewRegistry(observability.NopLogger(), 2)
	conn := &fakeConn{}
	c := &connection{
		id:        "test01",
		transport: conn,
		outbox:    make(chan []byte, 2),
		stop:      make(chan struct{}),
	}

	// Fill the outbox without a writer draining it, then overflow it.
	registry.enqueue(c, []byte("a"))
	registry.enqueue(c, []byte("b"))
	registry.enqueue(c, []byte("c"))

	assert.Equal(t, "b", string(<-c.outbox))
	assert.Equal(t, "c", string(<-c.outbox))
}

func TestRegistry_CloseAll(t *testing.T) {
	registry := NewRegistry(observability.NopLogger(), 8)
	conns := []*fakeConn{{}, {}}
	for _, c := range conns {
		registry.Register(c)
	}

	registry.CloseAll()

	assert.Equal(t, 0, registry.Count())
	for _, c := range conns {
		assert.True(t, c.Closed())
	}
}
