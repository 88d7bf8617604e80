package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cleoai/cleo/internal/assets"
	"github.com/cleoai/cleo/internal/config"
	"github.com/cleoai/cleo/internal/logging"
	"github.com/cleoai/cleo/internal/provider"
	"github.com/cleoai/cleo/internal/session"
	"github.com/cleoai/cleo/internal/telemetry"
	"github.com/cleoai/cleo/internal/validate"
)

// ErrClientClosed is returned when emitting on a closed connection.
var ErrClientClosed = errors.New("client connection closed")

// HandlerFunc processes one inbound capability request. Handlers run as
// their own goroutines; two requests from the same connection may be in
// flight at once.
type HandlerFunc func(c *Client, data json.RawMessage)

// Server is the Cleo gateway HTTP + WebSocket server.
type Server struct {
	cfg      config.Config
	log      *logging.Logger
	limits   validate.Limits
	sessions *session.Registry
	provider provider.Client
	handlers map[string]HandlerFunc

	// Asset store (optional — nil disables /upload and /assets)
	assets assets.Store

	// Metrics (optional — nil records nothing)
	metrics *telemetry.Telemetry

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// ServerOption configures the gateway server.
type ServerOption func(*Server)

// WithAssets enables the upload endpoint backed by the given store.
func WithAssets(store assets.Store) ServerOption {
	return func(s *Server) {
		s.assets = store
	}
}

// WithTelemetry attaches metrics instruments.
func WithTelemetry(t *telemetry.Telemetry) ServerOption {
	return func(s *Server) {
		s.metrics = t
	}
}

// New creates a gateway server dispatching to the given provider.
func New(cfg config.Config, log *logging.Logger, gen provider.Client, opts ...ServerOption) *Server {
	limits := validate.Limits{
		PromptMax:      cfg.Limits.PromptMax,
		ImagePromptMax: cfg.Limits.ImagePromptMax,
		AssetMaxBytes:  int64(cfg.Limits.AssetMaxKiB) << 10,
		AssetMIMETypes: []string{"image/png", "image/jpeg"},
	}

	s := &Server{
		cfg:      cfg,
		log:      log.Sub("gateway"),
		limits:   limits,
		sessions: session.NewRegistry(cfg.Gateway.MaxClients, log),
		provider: gen,
		handlers: make(map[string]HandlerFunc),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.Gateway.AllowedOrigins),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerHandlers()
	return s
}

// Sessions exposes the registry for inspection (health, tests).
func (s *Server) Sessions() *session.Registry {
	return s.sessions
}

// checkWebSocketOrigin returns a function that validates WebSocket Origin
// headers. With no configured origins, only same-origin or non-browser
// clients (no Origin header) are allowed.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.GatewayConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins listening for HTTP and WebSocket connections. It blocks
// until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Gateway)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("provider", s.provider.Name()).
		Int("maxClients", s.cfg.Gateway.MaxClients).
		Msg("gateway server ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down gateway server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

// handleWebSocket upgrades HTTP to WebSocket and runs the connection loop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	// Inbound frames are bounded by the largest legal payload: an inline
	// asset plus prompt and envelope overhead.
	conn.SetReadLimit(2*s.limits.AssetMaxBytes + 64*1024)

	client := NewClient(conn, s.log.Sub("ws"))
	s.connect(client)
	defer s.disconnect(client)

	s.readLoop(client)
}

// connect registers a session for the client and acknowledges it. Never
// fails: a full registry evicts its oldest session first.
func (s *Server) connect(client *Client) {
	s.sessions.Connect(client)
	s.metrics.ConnectionOpened(context.Background())
	s.log.Info().Str("connId", client.ID()).Int("sessions", s.sessions.Len()).Msg("client connected")

	if err := client.Emit(EventConnected, NoticePayload{Message: "Connected"}); err != nil {
		s.log.Debug().Err(err).Str("connId", client.ID()).Msg("connected ack failed")
	}
}

// disconnect notifies the client and removes its session. The notification
// is best-effort; the socket may already be gone.
func (s *Server) disconnect(client *Client) {
	if err := client.Emit(EventDisconnected, NoticePayload{Message: "Disconnected"}); err != nil {
		s.log.Debug().Err(err).Str("connId", client.ID()).Msg("disconnected notice skipped")
	}
	s.sessions.Disconnect(client.ID())
	s.metrics.SessionClosed(context.Background())
	client.Close()
	s.log.Info().Str("connId", client.ID()).Msg("client disconnected")
}

// readLoop processes incoming frames until the connection drops.
func (s *Server) readLoop(client *Client) {
	for {
		frame, err := client.ReadFrame()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Str("connId", client.ID()).Msg("client closed connection")
			} else {
				s.log.Debug().Err(err).Str("connId", client.ID()).Msg("read loop ended")
			}
			return
		}

		s.dispatch(client, frame)
	}
}

// dispatch routes a frame to its capability handler. Each request runs as
// its own goroutine, so requests from one connection interleave freely and
// a slow provider call never blocks the read loop.
func (s *Server) dispatch(client *Client, frame Frame) {
	handler, ok := s.handlers[frame.Event]
	if !ok {
		s.emitError(client, frame.Event, http.StatusBadRequest, "Unknown event: "+frame.Event)
		return
	}

	s.metrics.Request(context.Background(), frame.Event)
	go handler(client, frame.Data)
}

// emitError surfaces a structured error event to the client and records it.
func (s *Server) emitError(client *Client, capability string, status int, message string) {
	s.metrics.Error(context.Background(), capability, status)
	if err := client.EmitError(status, message); err != nil {
		s.log.Debug().Err(err).Str("connId", client.ID()).Msg("error emit failed")
	}
}

// providerCtx bounds one provider call.
func (s *Server) providerCtx() (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.Provider.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
