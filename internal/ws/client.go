package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// client is one websocket connection. It implements game.Conn: the core only
// ever sees the ID and the Send/Close pair, never the socket itself.
type client struct {
	id   string
	conn *websocket.Conn
	send chan string
	log  zerolog.Logger

	mu       sync.Mutex
	closed   bool
	discOnce sync.Once
}

func newClient(conn *websocket.Conn, log zerolog.Logger) *client {
	id := uuid.NewString()
	return &client{
		id:   id,
		conn: conn,
		send: make(chan string, 16),
		log:  log.With().Str("conn", id).Logger(),
	}
}

func (c *client) ID() string { return c.id }

// Send queues a message for delivery. A client that cannot keep up loses
// messages rather than stalling the lobby it shares with everyone else.
func (c *client) Send(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- message:
	default:
		c.log.Warn().Msg("send buffer full, dropping message")
	}
}

// Close terminates the connection. Safe to call more than once.
func (c *client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump drains the send queue onto the socket and closes the socket when
// the queue is closed or the peer stops accepting writes.
func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
			return
		}
	}
}
