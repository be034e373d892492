package handlers

import (
	"net/http"

	"crestmont/internal/services"
)

// ProgressHandler exposes the derived progress reports
type ProgressHandler struct {
	progress *services.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// linkedOnly restricts the payment sum to transactions linked to an
// investment when linked_only=true is passed
func linkedOnly(r *http.Request) bool {
	return r.URL.Query().Get("linked_only") == "true"
}

// Mine handles GET /api/v1/progress. Admins may pass user_id to read another
// investor's report.
func (h *ProgressHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Not authenticated"})
		return
	}

	targetID := user.ID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, valid := parseUintParam(raw)
		if !valid {
			WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid user_id"})
			return
		}
		if id != user.ID && !user.IsAdmin {
			WriteJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Not allowed to view this report"})
			return
		}
		targetID = id
	}

	report, err := h.progress.ComputeForUser(targetID, linkedOnly(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Progress retrieved", Data: report})
}

// All handles GET /api/v1/progress/all. Admin only.
func (h *ProgressHandler) All(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok || !user.IsAdmin {
		WriteJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Admin access required"})
		return
	}

	report, err := h.progress.ComputeAll(linkedOnly(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Portfolio progress retrieved", Data: report})
}
