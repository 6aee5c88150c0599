package rtc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("signal backpressure")

const (
	writeWait   = 5 * time.Second
	sendBuffer  = 64
	dialTimeout = 10 * time.Second
)

// signalConn is the client side of the signaling websocket. Writes go
// through a buffered channel drained by writePump.
type signalConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func dialSignal(ctx context.Context, url, token string) (*signalConn, error) {
	d := websocket.Dialer{HandshakeTimeout: dialTimeout}
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := d.DialContext(ctx, url, h)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &signalConn{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	go c.writePump()
	return c, nil
}

func (c *signalConn) writePump() {
	defer close(c.done)
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warn().Err(err).Str("module", "rtc.signal").Msg("write failed")
			// keep draining so senders never block on a dead socket
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump delivers decoded envelopes until the socket fails.
func (c *signalConn) readPump(handle func(envelope)) error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn().Err(err).Str("module", "rtc.signal").Msg("bad message")
			continue
		}
		handle(env)
	}
}

func (c *signalConn) TrySend(env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return net.ErrClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close flushes pending writes, sends a close frame and closes the socket.
func (c *signalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	select {
	case <-c.done:
	case <-time.After(writeWait):
	}
	_ = c.conn.Close()
}
