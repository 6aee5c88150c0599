package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app/capture"
	"github.com/dkeye/Meet/internal/app/session"
)

var ErrBackpressure = errors.New("backpressure")

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// change is one frame of the change stream.
type change struct {
	Type    string            `json:"type"`
	Session *session.Snapshot `json:"session,omitempty"`
	Capture *capture.Snapshot `json:"capture,omitempty"`
}

// eventConn pushes snapshots to one websocket client. A client that
// cannot keep up is disconnected.
type eventConn struct {
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
	done   chan struct{}
	logger zerolog.Logger
}

func (e *eventConn) TrySend(ch change) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	select {
	case <-e.done:
		return nil
	default:
	}
	select {
	case e.send <- data:
		return nil
	default:
		e.Close()
		return ErrBackpressure
	}
}

func (e *eventConn) Close() {
	e.once.Do(func() {
		close(e.done)
		_ = e.conn.Close()
	})
}

func (e *eventConn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer e.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case <-ticker.C:
			_ = e.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := e.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data := <-e.send:
			_ = e.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := e.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				e.logger.Warn().Err(err).Msg("write failed")
				return
			}
		}
	}
}

// readPump discards client frames and returns when the client goes away.
func (e *eventConn) readPump() {
	defer e.Close()
	for {
		if _, _, err := e.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *handlers) events(ctx context.Context, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Str("module", "adapters.http").Err(err).Msg("upgrade failed")
		return
	}
	e := &eventConn{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: log.With().Str("module", "adapters.http.events").Str("sid", c.GetString("client_token")).Logger(),
	}

	// initial state first, then every change in mutation order
	ss, cs := h.session.Snapshot(), h.capture.Snapshot()
	_ = e.TrySend(change{Type: "session", Session: &ss})
	_ = e.TrySend(change{Type: "capture", Capture: &cs})

	cancelSession := h.session.Subscribe(func(s session.Snapshot) {
		if err := e.TrySend(change{Type: "session", Session: &s}); err != nil {
			e.logger.Warn().Err(err).Msg("dropping slow client")
		}
	})
	cancelCapture := h.capture.Subscribe(func(s capture.Snapshot) {
		if err := e.TrySend(change{Type: "capture", Capture: &s}); err != nil {
			e.logger.Warn().Err(err).Msg("dropping slow client")
		}
	})
	defer cancelSession()
	defer cancelCapture()

	e.logger.Info().Msg("change stream opened")
	go e.readPump()
	e.writePump(ctx)
	e.logger.Info().Msg("change stream closed")
}
