package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"filedepot/internal/depot"
)

func TestAuditHub_StreamsEntries(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	hub := NewAuditHub(logger)

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleStream))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	// Wait for registration before notifying
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sent := &depot.AuditEntry{
		ID:        "a1",
		Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		IP:        depot.PlaceholderIP,
		MAC:       depot.PlaceholderMAC,
		Action:    depot.ActionUpload,
		Details:   "file /a.txt",
	}
	hub.Notify(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got depot.AuditEntry
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading entry: %v", err)
	}
	if got.ID != "a1" || got.Action != depot.ActionUpload {
		t.Errorf("entry = %+v, want id a1 action UPLOAD", got)
	}
}

func TestAuditHub_DropsClosedClients(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	hub := NewAuditHub(logger)

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleStream))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	// The read pump notices the close and unregisters the client
	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never dropped after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAuditHub_NotifyWithoutClients(t *testing.T) {
	hub := NewAuditHub(slog.New(slog.DiscardHandler))

	// Must not panic or block
	hub.Notify(&depot.AuditEntry{ID: "a1", Action: depot.ActionSystem})
}
