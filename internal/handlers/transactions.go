package handlers

import (
	"encoding/json"
	"net/http"

	"crestmont/internal/services"
)

// TransactionHandler exposes the transaction ledger endpoints
type TransactionHandler struct {
	transactions *services.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactions *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// List handles GET /api/v1/transactions. Admins see every transaction and may
// filter by user_id and investment_id; investors see only their own.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Not authenticated"})
		return
	}

	var ownerID, investmentID *uint
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
	if raw := r.URL.Query().Get("investment_id"); raw != "" {
		id, valid := parseUintParam(raw)
		if !valid {
			WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid investment_id"})
			return
		}
		investmentID = &id
	}

	skip, limit := parsePagination(r)
	transactions, err := h.transactions.List(ownerID, investmentID, skip, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Transactions retrieved", Data: transactions})
}

// Record handles POST /api/v1/transactions. Investors may only record against
// themselves; admins may record on behalf of any user.
func (h *TransactionHandler) Record(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Not authenticated"})
		return
	}

	var input services.RecordTransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if !user.IsAdmin {
		input.UserID = user.ID
	}

	transaction, err := h.transactions.Record(input)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, APIResponse{Success: true, Message: "Transaction recorded", Data: transaction})
}
