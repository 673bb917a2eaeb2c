package server

import (
	"net/http"

	"filedepot/internal/depot"
)

// FilesHandler serves the item listing and mutation endpoints.
type FilesHandler struct {
	service *depot.Service
}

// NewFilesHandler creates a handler backed by the given service.
func NewFilesHandler(service *depot.Service) *FilesHandler {
	return &FilesHandler{service: service}
}

// List handles GET /files?path=P. An absent path defaults to the root.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("path")

	items, err := h.service.List(r.Context(), dir)
	if err != nil {
		handleError(w, "Failed to fetch files", err)
		return
	}
	if items == nil {
		items = []*depot.Item{}
	}
	RespondJSON(w, http.StatusOK, items)
}

// Create handles POST /files with a CreateRequest body.
func (h *FilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req depot.CreateRequest
	if err := ParseJSON(w, r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleError(w, "Failed to create item", err)
		return
	}
	RespondJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /files?id=ID.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleError(w, "Failed to delete item", err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}

type moveRequest struct {
	ItemID     string `json:"itemId"`
	TargetPath string `json:"targetPath"`
}

// Move handles POST /files/move with {itemId, targetPath}.
func (h *FilesHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := ParseJSON(w, r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	moved, err := h.service.Move(r.Context(), req.ItemID, req.TargetPath)
	if err != nil {
		handleError(w, "Failed to move item", err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"moved":   moved,
	})
}
