// Package live serves the orchestrator's read-only projections: the current
// snapshot as JSON and the event stream over WebSocket.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/AltairaLabs/interviewkit/runtime/events"
	"github.com/AltairaLabs/interviewkit/runtime/logger"
	"github.com/AltairaLabs/interviewkit/runtime/turn"
)

const (
	// defaultReadHeaderTimeout prevents Slowloris attacks.
	defaultReadHeaderTimeout = 10 * time.Second

	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 30 * time.Second
	shutdownTimeout     = 5 * time.Second
	maxClientMessage    = 512
)

// Message types on the /events stream.
const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
)

// Message is one frame on the /events stream. A client first receives the
// current snapshot, then every event in publication order.
type Message struct {
	Type     string         `json:"type"`
	Snapshot *turn.Snapshot `json:"snapshot,omitempty"`
	Event    *events.Event  `json:"event,omitempty"`
}

// SnapshotSource provides the current projection. *turn.Orchestrator implements it.
type SnapshotSource interface {
	Snapshot() turn.Snapshot
}

// Option configures a Server.
type Option func(*Server)

// WithWriteTimeout bounds each WebSocket write. Default: 10s.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { s.writeTimeout = d }
}

// WithPingInterval sets the keep-alive ping period. Default: 30s.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) { s.pingInterval = d }
}

// WithCheckOrigin sets the WebSocket origin check. By default only
// same-origin requests are accepted.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// Server is the live presentation server.
type Server struct {
	addr         string
	source       SnapshotSource
	hub          *broadcaster
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pingInterval time.Duration
}

// NewServer creates a server for addr and subscribes it to bus.
func NewServer(addr string, source SnapshotSource, bus *events.EventBus, opts ...Option) *Server {
	s := &Server{
		addr:         addr,
		source:       source,
		hub:          newBroadcaster(),
		upgrader:     websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
		writeTimeout: defaultWriteTimeout,
		pingInterval: defaultPingInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if bus != nil {
		bus.SubscribeAll(func(e *events.Event) {
			s.hub.send(Message{Type: MessageEvent, Event: e})
		})
	}
	return s
}

// Handler returns the server routes wrapped with OpenTelemetry instrumentation.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /health", s.handleHealth)
	return otelhttp.NewHandler(mux, "live-server")
}

// Clients returns the number of connected event stream clients.
func (s *Server) Clients() int {
	return s.hub.count()
}

// Close disconnects every event stream client.
func (s *Server) Close() {
	s.hub.close()
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ln) }()
	logger.Info("Live server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.source.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"state":   s.source.Snapshot().State,
		"clients": s.Clients(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	snap := s.source.Snapshot()
	if err := s.write(conn, Message{Type: MessageSnapshot, Snapshot: &snap}); err != nil {
		return
	}

	gone := make(chan struct{})
	go s.readLoop(conn, gone)

	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(s.writeTimeout))
				return
			}
			if err := s.write(conn, msg); err != nil {
				logger.Debug("Event stream write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout)); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readLoop discards client frames and closes gone when the client disconnects.
func (s *Server) readLoop(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(maxClientMessage)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, msg Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
