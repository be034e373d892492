package handlers

import (
	"context"
	"net/http"
	"strings"

	"crestmont/internal/domain"
	"crestmont/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type contextKey string

const userContextKey contextKey = "user"

// JWTAuthMiddleware validates the bearer token, loads the user and stores it
// in the request context. Inactive accounts are rejected.
func JWTAuthMiddleware(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Authorization header required"})
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Invalid authorization header format"})
				return
			}

			claims, err := util.ValidateToken(parts[1])
			if err != nil {
				WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "Invalid or expired token"})
				return
			}

			user, err := util.GetUserFromToken(db, claims)
			if err != nil {
				WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "User not found"})
				return
			}

			if !user.IsActive {
				WriteJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "User account is inactive"})
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware assigns a request id to every request for log
// correlation, honoring an inbound X-Request-ID when present
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the authenticated user stored by JWTAuthMiddleware
func CurrentUser(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.User)
	return user, ok
}
