package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nepalkings/kings-server/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is poll-driven; the socket only pushes notifications.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClient is one connected notification subscriber.
type wsClient struct {
	gameID   string
	playerID string
	conn     *websocket.Conn
	send     chan game.GameNotification
}

// Hub fans game notifications out to the websocket subscribers of each
// game.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]map[*wsClient]struct{}),
	}
}

// Broadcast delivers a notification to every subscriber of its game.
// A notification addressed to one player is only delivered to that
// player's connections. Slow consumers are dropped, not waited on.
func (h *Hub) Broadcast(notification game.GameNotification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[notification.GameID] {
		if notification.PlayerID != "" && notification.PlayerID != client.playerID {
			continue
		}
		select {
		case client.send <- notification:
		default:
			h.logger.Warn("dropping notification for slow websocket client",
				zap.String("game_id", notification.GameID),
				zap.String("player_id", client.playerID),
			)
		}
	}
}

func (h *Hub) register(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.gameID] == nil {
		h.clients[client.gameID] = make(map[*wsClient]struct{})
	}
	h.clients[client.gameID][client] = struct{}{}
}

func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[client.gameID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.gameID)
		}
	}
}

// handleWebSocket upgrades the connection and subscribes it to a
// game's notifications. The player must belong to the game.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	playerID := r.URL.Query().Get("player_id")

	// Reject before upgrading: an unknown game or player never gets a
	// socket.
	if _, err := s.engine.View(gameID, playerID); err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		gameID:   gameID,
		playerID: playerID,
		conn:     conn,
		send:     make(chan game.GameNotification, sendBufferSize),
	}
	s.hub.register(client)

	go client.writePump(s.hub)
	go client.readPump(s.hub)
}

// writePump pushes notifications and pings until the connection dies.
func (c *wsClient) writePump(hub *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case notification, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(notification); err != nil {
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

// readPump discards inbound frames and tears the client down on close.
func (c *wsClient) readPump(hub *Hub) {
	defer func() {
		hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
