package eval

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// upgrader mirrors the teacher server's WebSocket upgrader defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ProgressUpdate is one EvaluateDataset progress tick, pushed to every
// connected --watch client.
type ProgressUpdate struct {
	Index int        `json:"index"`
	Total int        `json:"total"`
	Item  ItemResult `json:"item"`
}

// Broadcaster fans out evaluation progress over WebSocket connections,
// letting a CLI --watch client follow a long-running EvaluateDataset call
// live instead of waiting for the final report.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewBroadcaster builds an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*websocket.Conn]bool)}
}

// HandleWebSocket upgrades the request and registers the connection as a
// progress subscriber until it disconnects.
func (b *Broadcaster) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("watch: failed to upgrade connection", "error", err)
		return
	}

	b.mu.Lock()
	b.clients[conn] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.clients, conn)
		b.mu.Unlock()
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Broadcast sends a progress update to every connected client, dropping
// any connection that errors on write.
func (b *Broadcaster) Broadcast(update ProgressUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			_ = conn.Close()
			delete(b.clients, conn)
		}
	}
}
