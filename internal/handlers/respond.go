package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"crestmont/internal/config"
	apperrors "crestmont/pkg/errors"
)

// APIResponse is the envelope for every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteError maps an application error to its HTTP status. Internal detail
// is logged server-side; the caller sees the generic message unless the
// server runs in debug mode.
func WriteError(w http.ResponseWriter, err error) {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeValidation:
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: errMessage(err)})
	case apperrors.ErrCodeUnauthorized:
		WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: errMessage(err)})
	case apperrors.ErrCodeForbidden:
		WriteJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: errMessage(err)})
	case apperrors.ErrCodeNotFound:
		WriteJSON(w, http.StatusNotFound, APIResponse{Success: false, Message: errMessage(err)})
	case apperrors.ErrCodeDomainState:
		WriteJSON(w, http.StatusConflict, APIResponse{Success: false, Message: errMessage(err)})
	default:
		log.Printf("[ERROR] %v", err)
		message := "internal server error"
		if config.Get().App.Debug {
			message = err.Error()
		}
		WriteJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: message})
	}
}

func errMessage(err error) string {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.Message
	}
	return err.Error()
}
