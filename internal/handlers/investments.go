package handlers

import (
	"encoding/json"
	"net/http"

	"crestmont/internal/services"

	"github.com/gorilla/mux"
)

// InvestmentHandler exposes the investment lifecycle endpoints
type InvestmentHandler struct {
	investments *services.InvestmentService
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(investments *services.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investments: investments}
}

// List handles GET /api/v1/investments. Admins see every investment and may
// filter by user_id; investors see only their own.
func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Not authenticated"})
		return
	}

	var ownerID *uint
	if user.IsAdmin {
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			id, valid := parseUintParam(raw)
			if !valid {
				WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid user_id"})
				return
			}
			ownerID = &id
		}
	} else {
		ownerID = &user.ID
	}

	skip, limit := parsePagination(r)
	investments, err := h.investments.List(ownerID, skip, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Investments retrieved", Data: investments})
}

// Get handles GET /api/v1/investments/{id}. Investors may only read their own.
func (h *InvestmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Not authenticated"})
		return
	}

	id, valid := parseUintParam(mux.Vars(r)["id"])
	if !valid {
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	investment, err := h.investments.Get(id)
	if err != nil {
		WriteError(w, err)
		return
	}

	if !user.IsAdmin && investment.UserID != user.ID {
		WriteJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Not allowed to view this investment"})
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Investment retrieved", Data: investment})
}

// Create handles POST /api/v1/investments. Admin only.
func (h *InvestmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok || !user.IsAdmin {
		WriteJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Admin access required"})
		return
	}

	var input services.CreateInvestmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	investment, err := h.investments.Create(user.ID, input)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, APIResponse{Success: true, Message: "Investment created", Data: investment})
}

// Update handles PUT /api/v1/investments/{id}. Admin only.
func (h *InvestmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok || !user.IsAdmin {
		WriteJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Admin access required"})
		return
	}

	id, valid := parseUintParam(mux.Vars(r)["id"])
	if !valid {
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	var input services.UpdateInvestmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	investment, err := h.investments.Update(user.ID, id, input)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Investment updated", Data: investment})
}

// Delete handles DELETE /api/v1/investments/{id}. Admin only.
func (h *InvestmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok || !user.IsAdmin {
		WriteJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Admin access required"})
		return
	}

	id, valid := parseUintParam(mux.Vars(r)["id"])
	if !valid {
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	if err := h.investments.Delete(user.ID, id); err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Investment deleted"})
}
