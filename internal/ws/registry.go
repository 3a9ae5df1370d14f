// Package ws tracks live client connections and relays bus events to them.
package ws

import (
	"sync"

	"github.com/google/uuid"

	"github.com/docpulse/docpulse/internal/observability"
)

// connIDLength is the length of the short opaque connection id handed to
// clients.
const connIDLength = 6

// Registry is the authoritative set of live client connections. It is the
// only component that mutates the connection set; everything else holds a
// connection only for the duration of a delivery attempt.
type Registry struct {
	logger     *observability.Logger
	outboxSize int

	mu    sync.RWMutex
	conns map[string]*connection
}

// connection pairs a transport with its bounded outbox. A dedicated writer
// goroutine drains the outbox so a slow or broken client never blocks a
// broadcast.
type connection struct {
	id        string
	transport Conn
	outbox    chan []byte
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewRegistry creates a connection registry. outboxSize bounds each
// connection's pending payload queue.
func NewRegistry(logger *observability.Logger, outboxSize int) *Registry {
	if outboxSize <= 0 {
		outboxSize = 32
	}
	return &Registry{
		logger:     logger,
		outboxSize: outboxSize,
		conns:      make(map[string]*connection),
	}
}

// Register adds a connection and returns its minted id, unique for the
// process lifetime.
func (r *Registry) Register(transport Conn) string {
	c := &connection{
		transport: transport,
		outbox:    make(chan []byte, r.outboxSize),
		stop:      make(chan struct{}),
	}

	r.mu.Lock()
	for {
		id := uuid.NewString()[:connIDLength]
		if _, taken := r.conns[id]; !taken {
			c.id = id
			r.conns[id] = c
			break
		}
	}
	r.mu.Unlock()

	go r.writeLoop(c)

	r.logger.Info().Str("connection_id", c.id).Msg("connection registered")
	return c.id
}

// Unregister removes a connection and closes its transport. Safe to call
// more than once.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	c, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	c.stopOnce.Do(func() { close(c.stop) })
	c.transport.Close()
	r.logger.Info().Str("connection_id", id).Msg("connection unregistered")
}

// Broadcast queues a payload for every registered connection. It never
// blocks: a full outbox drops its oldest pending payload to make room. A
// connection whose transport write fails is unregistered by its writer.
func (r *Registry) Broadcast(payload []byte) {
	r.mu.RLock()
	targets := make([]*connection, 0, len(r.conns))
	for _, c := range r.conns {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, c := range targets {
		r.enqueue(c, payload)
	}
}

// SendTo queues a payload for one connection. Returns false if the
// connection is not registered.
func (r *Registry) SendTo(id string, payload []byte) bool {
	r.mu.RLock()
	c, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	r.enqueue(c, payload)
	return true
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll unregisters every connection. Called at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*connection)
	r.mu.Unlock()

	for _, c := range conns {
		c.stopOnce.Do(func() { close(c.stop) })
		c.transport.Close()
	}
}

// enqueue places a payload on the connection's outbox, dropping the oldest
// pending payload if the outbox is full.
func (r *Registry) enqueue(c *connection, payload []byte) {
	select {
	case c.outbox <- payload:
		return
	default:
	}

	select {
	case <-c.outbox:
		r.logger.Debug().Str("connection_id", c.id).Msg("outbox full, dropped oldest payload")
	default:
	}
	select {
	case c.outbox <- payload:
	default:
	}
}

// writeLoop drains a connection's outbox to its transport. A write failure
// removes the connection from the set; the rest keep receiving.
func (r *Registry) writeLoop(c *connection) {
	for {
		select {
		case <-c.stop:
			return
		case payload := <-c.outbox:
			if err := c.transport.WriteText(payload); err != nil {
				r.logger.Warn().Err(err).Str("connection_id", c.id).Msg("write failed, removing connection")
				r.Unregister(c.id)
				return
			}
		}
	}
}
