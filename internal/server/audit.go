package server

import (
	"net/http"

	"filedepot/internal/depot"
)

// AuditHandler serves the audit trail endpoints.
type AuditHandler struct {
	service *depot.Service
}

// NewAuditHandler creates a handler backed by the given service.
func NewAuditHandler(service *depot.Service) *AuditHandler {
	return &AuditHandler{service: service}
}

// List handles GET /audit: the most recent entries, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.RecentAudit(r.Context(), depot.DefaultAuditLimit)
	if err != nil {
		handleError(w, "Failed to fetch audit logs", err)
		return
	}
	if entries == nil {
		entries = []*depot.AuditEntry{}
	}
	RespondJSON(w, http.StatusOK, entries)
}

type auditRequest struct {
	IP      string `json:"ip"`
	MAC     string `json:"mac"`
	Action  string `json:"action"`
	Details string `json:"details"`
}

// Append handles POST /audit for UI-originated events like NAVIGATE.
func (h *AuditHandler) Append(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if err := ParseJSON(w, r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	entry, err := h.service.AppendAudit(r.Context(), &depot.AuditEntry{
		IP:      req.IP,
		MAC:     req.MAC,
		Action:  req.Action,
		Details: req.Details,
	})
	if err != nil {
		handleError(w, "Failed to create audit log", err)
		return
	}
	RespondJSON(w, http.StatusOK, entry)
}
