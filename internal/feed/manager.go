// Package feed broadcasts successful solves to WebSocket clients so the
// scoreboard can update live. Delivery is best effort: clients that stall
// are dropped, and nothing is replayed on reconnect.
package feed

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/metrics"
)

const writeWait = 5 * time.Second

// SolveEvent is one entry of the live solve feed
type SolveEvent struct {
	TeamName      string    `json:"teamName"`
	ChallengeName string    `json:"challengeName"`
	Points        int       `json:"points"`
	NewScore      int       `json:"newScore"`
	SolvedAt      time.Time `json:"solvedAt"`
}

// Manager accepts WebSocket connections and fans solve events out to them
type Manager struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

// NewManager creates a new feed manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger: logger.Named("solve-feed"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The feed is public read-only data; any origin may watch.
				return true
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleConnection upgrades the request and registers the client
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	m.clientsMu.Lock()
	m.clients[conn] = struct{}{}
	m.clientsMu.Unlock()
	metrics.FeedClients.Inc()

	m.logger.Debug("Feed client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Drain control frames and detect disconnect. The feed is one-way;
	// any payload from the client is ignored.
	go func() {
		defer m.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (m *Manager) remove(conn *websocket.Conn) {
	m.clientsMu.Lock()
	if _, ok := m.clients[conn]; ok {
		delete(m.clients, conn)
		metrics.FeedClients.Dec()
	}
	m.clientsMu.Unlock()
	_ = conn.Close()
}

// AnnounceSolve implements service.SolveAnnouncer
func (m *Manager) AnnounceSolve(teamName, challengeName string, points, newScore int) {
	m.Broadcast(SolveEvent{
		TeamName:      teamName,
		ChallengeName: challengeName,
		Points:        points,
		NewScore:      newScore,
		SolvedAt:      time.Now(),
	})
}

// Broadcast sends an event to every connected client. Clients whose write
// fails or times out are dropped.
func (m *Manager) Broadcast(event SolveEvent) {
	m.clientsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(m.clients))
	for conn := range m.clients {
		conns = append(conns, conn)
	}
	m.clientsMu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			m.logger.Debug("Dropping slow feed client", zap.Error(err))
			m.remove(conn)
		}
	}
}

// ClientCount returns the number of connected clients
func (m *Manager) ClientCount() int {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()
	return len(m.clients)
}

// Close disconnects all clients
func (m *Manager) Close() {
	m.clientsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(m.clients))
	for conn := range m.clients {
		conns = append(conns, conn)
	}
	m.clients = make(map[*websocket.Conn]struct{})
	m.clientsMu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
		metrics.FeedClients.Dec()
	}
}
