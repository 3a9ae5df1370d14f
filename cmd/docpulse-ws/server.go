package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/docpulse/docpulse/internal/observability"
	"github.com/docpulse/docpulse/internal/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// server holds the delivery-side HTTP surface: the WebSocket endpoint and
// the raw broadcast endpoint.
type server struct {
	logger   *observability.Logger
	registry *ws.Registry
}

func newServer(logger *observability.Logger, registry *ws.Registry) *server {
	return &server{logger: logger, registry: registry}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"docpulse-ws"}`))
	})

	r.Get("/ws", s.handleWebSocket)
	r.Post("/api/send-message", s.handleSendMessage)

	return r
}

// handleWebSocket upgrades the connection, registers it, greets the client
// with its connection id, and then only reads. Incoming client text is
// logged but not routed anywhere; delivery is broadcast-only.
func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	id := s.registry.Register(ws.NewGorillaConn(conn))
	s.registry.SendTo(id, []byte("Your ID: "+id))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info().Str("connection_id", id).Msg("websocket connection closed")
			s.registry.Unregister(id)
			return
		}
		s.logger.Info().
			Str("connection_id", id).
			Str("message", string(message)).
			Msg("received client message")
	}
}

// MessageRequestDTO is the body of POST /api/send-message.
type MessageRequestDTO struct {
	Message  string `json:"message"`
	SenderID string `json:"sender_id,omitempty"`
}

// handleSendMessage broadcasts a raw text message to every connection.
func (s *server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid request body"}`))
		return
	}

	s.logger.Info().
		Int("connections", s.registry.Count()).
		Str("sender_id", req.SenderID).
		Msg("broadcasting message")
	s.registry.Broadcast([]byte(req.Message))

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"sent"}`))
}
