package depot

import "time"

// Audit actions recorded by the service and the UI.
const (
	ActionUpload       = "UPLOAD"
	ActionDelete       = "DELETE"
	ActionCreateFolder = "CREATE_FOLDER"
	ActionNavigate     = "NAVIGATE"
	ActionMove         = "MOVE"
	ActionSystem       = "SYSTEM"
)

// AuditRetention is the number of entries the file-backed audit store keeps.
// SQL-backed stores are unbounded; the read path is bounded separately.
const AuditRetention = 1000

// DefaultAuditLimit bounds how many entries a read returns when the caller
// does not ask for fewer.
const DefaultAuditLimit = 100

// Placeholder client identity. Real network identity capture is out of scope;
// callers that don't supply their own ip/mac get these.
const (
	PlaceholderIP  = "192.168.1.100"
	PlaceholderMAC = "00:1B:44:11:3A:B7"
)

// AuditEntry is one record in the append-only action log.
// ID and Timestamp are assigned at append time.
type AuditEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	MAC       string    `json:"mac"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// AuditNotifier receives each entry after it has been appended to the store.
// Delivery is best-effort; implementations must not block.
type AuditNotifier interface {
	Notify(entry *AuditEntry)
}
