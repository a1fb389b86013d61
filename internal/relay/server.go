package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/remotix/remotix/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  maxMessageSize,
	WriteBufferSize: maxMessageSize,

	// The relay does no user authentication; origin checks belong to a
	// deployment-specific reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server ties the hub to its HTTP surface: the websocket upgrade endpoint
// plus the health and status probes.
type Server struct {
	hub  *Hub
	addr string
}

func NewServer(hub *Hub, addr string) *Server {
	return &Server{hub: hub, addr: addr}
}

// Run starts the hub loop and blocks serving HTTP.
func (s *Server) Run() error {
	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	mux.HandleFunc("/health", s.serveHealth)
	mux.HandleFunc("/status", s.serveStatus)

	slog.Info("signaling relay listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

// serveWs upgrades the connection, assigns the endpoint id and starts the
// client's pumps. The id plays the role a transport-assigned socket id
// would: it is the routing key peers use in signal envelopes.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		Hub:  s.hub,
		Conn: conn,
		Send: make(chan *protocol.Message, 256),
	}

	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.hub.Status())
}
