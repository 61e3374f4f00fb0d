package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campus-chat/contract"
	"campus-chat/domain"
	"campus-chat/domain/event"
)

const (
	// writeWait bounds a single write to the peer.
	writeWait = 10 * time.Second
	// pongWait is the liveness timeout: a peer that stops answering
	// pings is force-disconnected, which bounds presence staleness.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxFrameSize caps inbound frames well above MaxMessageLen to
	// leave room for the envelope and multibyte text.
	maxFrameSize = 4096
	// defaultSendBuffer sizes the per-client outbound queue when the
	// handler does not provide one. A client that falls this far behind
	// starts losing events rather than stalling fanout.
	defaultSendBuffer = 256
)

// Client owns one websocket connection. It feeds inbound frames to the
// coordinator and implements contract.EventSink for the outbound side.
type Client struct {
	id   domain.ConnID
	conn *websocket.Conn
	core contract.ICoordinator
	log  *slog.Logger

	send      chan []byte
	closeOnce sync.Once
}

// NewClient wraps one upgraded connection. sendBuffer sizes the
// outbound queue; non-positive values fall back to the default.
func NewClient(conn *websocket.Conn, core contract.ICoordinator, log *slog.Logger, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	id := domain.NewConnID()
	return &Client{
		id:   id,
		conn: conn,
		core: core,
		log:  log.With("conn", id),
		send: make(chan []byte, sendBuffer),
	}
}

func (c *Client) ID() domain.ConnID { return c.id }

// Consume frames the event and queues it for the write pump. It never
// blocks the dispatcher: a full queue returns an error and the event
// is counted as dropped for this client only.
func (c *Client) Consume(_ context.Context, e event.Outbound) error {
	frame, err := Encode(e)
	if err != nil {
		return err
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return fmt.Errorf("send buffer full for %s", c.id)
	}
}

// ReadPump pulls frames off the socket until it closes, then reports
// the disconnect to the coordinator. Runs in its own goroutine, one per
// connection.
func (c *Client) ReadPump() {
	defer func() {
		c.core.Disconnect(c.id)
		c.close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("Unexpected close", "err", err)
			}
			return
		}
		c.handle(raw)
	}
}

// handle routes one inbound frame. Malformed frames are the ordinary
// untrusted-input case: log and move on, never kill the connection.
func (c *Client) handle(raw []byte) {
	env, err := Decode(raw)
	if err != nil {
		c.log.Debug("Malformed frame", "err", err)
		return
	}

	switch env.Event {
	case EventJoin:
		var p joinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.log.Debug("Malformed join payload", "err", err)
			return
		}
		c.core.Join(c.id, p.Nickname)
	case EventSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.log.Debug("Malformed message payload", "err", err)
			return
		}
		c.core.Message(c.id, p.Message)
	case EventLogout:
		c.core.Logout(c.id)
	default:
		c.log.Debug("Unknown inbound event", "event", env.Event)
	}
}

// WritePump drains the send queue onto the socket and keeps the
// connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}
