package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"filedepot/internal/depot"
)

// writeWait bounds a single broadcast write. Notify is called synchronously
// from mutations, so a stalled client must time out rather than block them.
const writeWait = 10 * time.Second

// AuditHub streams appended audit entries to connected websocket clients.
// It implements depot.AuditNotifier; delivery is best-effort and a client
// that fails a write is dropped.
type AuditHub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewAuditHub creates a hub with no connected clients.
func NewAuditHub(logger *slog.Logger) *AuditHub {
	return &AuditHub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			// The CORS layer already gates browser access
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleStream upgrades the request to a websocket and keeps the connection
// registered until the client closes it.
func (h *AuditHub) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	h.logger.Info("audit stream client connected", "remote", conn.RemoteAddr().String())

	// Drain reads until the client disconnects; entries flow one way.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Notify pushes the entry to every connected client. Writes are serialized:
// gorilla connections do not support concurrent writers.
func (h *AuditHub) Notify(entry *depot.AuditEntry) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(entry); err != nil {
			h.logger.Warn("audit stream write failed, dropping client",
				"remote", c.RemoteAddr().String(), "error", err)
			h.drop(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *AuditHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *AuditHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// Compile-time check that AuditHub implements depot.AuditNotifier
var _ depot.AuditNotifier = (*AuditHub)(nil)
