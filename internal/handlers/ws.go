package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"marquee/internal/clients/metadata"
	"marquee/internal/core"
	"marquee/internal/utils"
	"marquee/internal/views"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Message is the envelope for every frame in both directions.
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type queryPayload struct {
	Query string `json:"query"`
}

type selectPayload struct {
	ID        int    `json:"id"`
	MediaType string `json:"media_type"`
}

type sessionPayload struct {
	ID string `json:"id"`
}

type renderPayload struct {
	Widget core.Widget `json:"widget"`
	HTML   string      `json:"html"`
}

type errorPayload struct {
	Error string `json:"error"`
}

var errUnknownMessage = errors.New("unknown message type")

// client binds one websocket connection to one session.
type client struct {
	manager  *core.Manager
	session  *core.Session
	renderer *views.Renderer
	conn     *websocket.Conn
	logger   *utils.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// HandleWebSocket upgrades the connection and opens a fresh session for it.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed:", err)
		return
	}

	session := s.manager.NewSession()
	c := &client{
		manager:  s.manager,
		session:  session,
		renderer: s.renderer,
		conn:     conn,
		logger:   s.logger.With("session", session.ID),
		send:     make(chan []byte, 256),
	}
	c.enqueue("session", sessionPayload{ID: session.ID})

	go c.writePump()
	go c.renderPump()
	go c.readPump()
}

// readPump dispatches client messages until the connection drops, then ends the session.
func (c *client) readPump() {
	defer func() {
		c.manager.CloseSession(c.session.ID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.session.Touch()
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket closed unexpectedly:", err)
			}
			return
		}

		c.session.Touch()
		if err := c.handleIncoming(data); err != nil {
			c.logger.Debug("Rejected client message:", err)
			c.enqueue("error", errorPayload{Error: err.Error()})
		}
	}
}

func (c *client) handleIncoming(data []byte) error {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}

	switch msg.Type {
	case "search:query":
		var p queryPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		c.session.Search.SetQuery(p.Query)

	case "search:select", "trending:select":
		var p selectPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		mediaType, err := metadata.ParseMediaType(p.MediaType)
		if err != nil {
			return err
		}
		if msg.Type == "search:select" {
			return c.session.Search.Select(p.ID, mediaType)
		}
		return c.session.Trending.Select(p.ID, mediaType)

	case "player:clear":
		c.session.ClearSelection()

	default:
		return errUnknownMessage
	}
	return nil
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	return json.Unmarshal(raw, v)
}

// renderPump pushes a fresh fragment for every widget that changed.
func (c *client) renderPump() {
	defer c.close()

	for {
		select {
		case <-c.session.Done():
			return
		case <-c.session.Changes():
			for _, w := range c.session.Drain() {
				html, err := c.renderer.Widget(c.session, w)
				if err != nil {
					c.logger.Error("Failed to render widget:", w, err)
					continue
				}
				data, err := encodeMessage("render", renderPayload{Widget: w, HTML: html})
				if err != nil {
					c.logger.Error("Failed to encode message:", "render", err)
					continue
				}
				if !c.push(data) {
					return
				}
			}
		}
	}
}

// writePump pumps queued messages to the websocket connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// session ended
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encodeMessage(msgType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// push queues a render from renderPump, waiting for room in the buffer.
// Changes made meanwhile pile up in the session's dirty set, so the next
// Drain renders the newest state. Returns false once the session has ended.
func (c *client) push(data []byte) bool {
	select {
	case c.send <- data:
		return true
	case <-c.session.Done():
		return false
	}
}

// enqueue queues a one-off message without blocking; a full buffer drops it.
func (c *client) enqueue(msgType string, payload interface{}) {
	data, err := encodeMessage(msgType, payload)
	if err != nil {
		c.logger.Error("Failed to encode message:", msgType, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("Send buffer full, dropping", msgType)
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
