package ws

import (
	"github.com/gorilla/websocket"
)

// Conn is the transport half of a registered connection. The registry's
// writer goroutine is the only caller of WriteText for a given connection.
type Conn interface {
	WriteText(payload []byte) error
	Close() error
}

// gorillaConn adapts a gorilla websocket connection to Conn.
type gorillaConn struct {
	c *websocket.Conn
}

// NewGorillaConn wraps a gorilla websocket connection for registration.
func NewGorillaConn(c *websocket.Conn) Conn {
	return &gorillaConn{c: c}
}

func (g *gorillaConn) WriteText(payload []byte) error {
	return g.c.WriteMessage(websocket.TextMessage, payload)
}

func (g *gorillaConn) Close() error {
	return g.c.Close()
}
