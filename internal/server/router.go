package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/YisusLuligo/chat/internal/coordinator"
	"github.com/YisusLuligo/chat/internal/middleware"
)

// RouterConfig holds configuration for the transport router
type RouterConfig struct {
	Logger      *slog.Logger
	Coordinator *coordinator.Coordinator
}

// NewRouter wires the WebSocket endpoint, the read-only REST views, and the
// health endpoint.
func NewRouter(cfg RouterConfig) http.Handler {
	h := &handlers{
		logger: cfg.Logger.With(slog.String("component", "transport")),
		coord:  cfg.Coordinator,
	}

	r := mux.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Logging(h.logger))
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/ws", h.serveWS)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rooms", h.listRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{room}/history", h.roomHistory).Methods(http.MethodGet)
	api.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)

	return r
}

type handlers struct {
	logger *slog.Logger
	coord  *coordinator.Coordinator
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients are native programs, not browsers; origin enforcement
	// would only reject our own CLI.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *handlers) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := newClient(conn, h.coord, h.logger)
	go c.run()
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.coord.SessionCount(),
	})
}

func (h *handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": h.coord.Rooms(),
	})
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"users": h.coord.ConnectedUsers(),
	})
}

func (h *handlers) roomHistory(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	writeJSON(w, http.StatusOK, map[string]any{
		"room":     room,
		"messages": h.coord.History(room),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
