package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/wrapview/internal/catalog"
	"github.com/Faultbox/wrapview/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// handleTextures lists the catalog on GET and accepts an upload on POST
// (multipart field "file").
func (s *Server) handleTextures(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusNotFound, "no texture catalog configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"textures": s.catalog.Entries()})

	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "no file selected")
			return
		}
		defer file.Close()

		entry, err := s.catalog.Save(header.Filename, file, maxUploadBytes)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, catalog.ErrNotAllowed) {
				status = http.StatusBadRequest
			}
			s.log.Warn("upload rejected", zap.String("name", header.Filename), zap.Error(err))
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "texture": entry})

	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last == nil {
		writeError(w, http.StatusServiceUnavailable, "no state yet")
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// handleWebSocket registers a client, sends it the latest state, and
// forwards its events to the session until it disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	last := s.last
	s.mu.Unlock()
	s.log.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		s.log.Debug("websocket client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	if last != nil {
		s.send(conn, Message{Type: "state", State: last})
	}
	if s.catalog != nil {
		s.send(conn, Message{Type: "catalog", Textures: s.catalog.Entries()})
	}

	for {
		var ev session.Event
		if err := conn.ReadJSON(&ev); err != nil {
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				s.send(conn, Message{Type: "error", Error: "malformed event"})
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		if ev.Type == "" {
			s.send(conn, Message{Type: "error", Error: "event without type"})
			continue
		}

		select {
		case s.events <- ev:
		case <-r.Context().Done():
			return
		}
	}
}
