// Package server exposes a session to browser clients: a JSON API for the
// texture catalog and scene state, and a websocket that carries UI events in
// and scene snapshots out.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/wrapview/internal/catalog"
	"github.com/Faultbox/wrapview/internal/config"
	"github.com/Faultbox/wrapview/internal/logger"
	"github.com/Faultbox/wrapview/internal/session"
)

// maxUploadBytes caps texture uploads.
const maxUploadBytes = 32 << 20

// Message is the envelope for every outbound websocket message.
type Message struct {
	Type     string            `json:"type"` // state | catalog | error
	State    *session.Snapshot `json:"state,omitempty"`
	Textures []catalog.Entry   `json:"textures,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Server bridges HTTP clients and the session goroutine. It never touches
// session state: events go out on a channel and snapshots come in through
// Publish.
type Server struct {
	cfg     config.ServerConfig
	catalog *catalog.Catalog
	events  chan<- session.Event
	log     *zap.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	last    *session.Snapshot
}

// New creates a server. cat may be nil when no catalog is configured.
func New(cfg config.ServerConfig, cat *catalog.Catalog, events chan<- session.Event, log *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		catalog: cat,
		events:  events,
		log:     logger.OrNop(log),
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // local tool, any origin
			},
		},
	}
	if cat != nil {
		cat.OnChange(s.publishCatalog)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/textures", s.handleTextures)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWebSocket)
	if s.catalog != nil {
		mux.Handle("/textures/", http.StripPrefix("/textures/", http.FileServer(http.Dir(s.catalog.Dir()))))
	}
	return mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Publish records snap and sends it to every websocket client. It is meant
// to be registered with session.OnChange.
func (s *Server) Publish(snap session.Snapshot) {
	s.mu.Lock()
	s.last = &snap
	s.mu.Unlock()
	s.broadcast(Message{Type: "state", State: &snap})
}

func (s *Server) publishCatalog(entries []catalog.Entry) {
	s.broadcast(Message{Type: "catalog", Textures: entries})
}

func (s *Server) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshal message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := s.write(conn, data); err != nil {
			s.log.Debug("websocket write failed, dropping client", zap.Error(err))
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// write sends one text frame. Callers hold s.mu, which serializes writers.
func (s *Server) write(conn *websocket.Conn, data []byte) error {
	if s.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) send(conn *websocket.Conn, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(conn, data); err != nil {
		s.log.Debug("websocket write failed", zap.Error(err))
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
