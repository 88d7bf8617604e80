package gateway

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cleoai/cleo/internal/logging"
)

// Client represents one live WebSocket connection. It satisfies
// session.Conn, so the session registry can key on it and close it during
// eviction.
type Client struct {
	connID string
	sock   *websocket.Conn

	mu     sync.Mutex
	closed bool
	log    *logging.Logger
}

// NewClient wraps a freshly upgraded WebSocket connection.
func NewClient(conn *websocket.Conn, log *logging.Logger) *Client {
	return &Client{
		connID: uuid.New().String(),
		sock:   conn,
		log:    log,
	}
}

// ID returns the connection's unique identity.
func (c *Client) ID() string {
	return c.connID
}

// Emit sends a named event with payload to this client only. Thread-safe.
// Emitting on a closed client returns ErrClientClosed.
func (c *Client) Emit(event string, payload any) error {
	frame, err := NewFrame(event, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	return c.sock.WriteJSON(frame)
}

// EmitError sends an "error" event carrying a status classification and
// message.
func (c *Client) EmitError(status int, message string) error {
	return c.Emit(EventError, ErrorPayload{Status: status, Message: message})
}

// ReadFrame reads the next frame from the WebSocket.
func (c *Client) ReadFrame() (Frame, error) {
	_, msg, err := c.sock.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Close closes the WebSocket connection. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.sock.Close()
}
