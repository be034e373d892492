package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crestmont/internal/domain"
	apperrors "crestmont/pkg/errors"
)

func requestAs(t *testing.T, user *domain.User, method, target string, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", apperrors.Validation("bad input"), http.StatusBadRequest},
		{"unauthorized", apperrors.Unauthorized("who are you"), http.StatusUnauthorized},
		{"forbidden", apperrors.Forbidden("not yours"), http.StatusForbidden},
		{"not found", apperrors.NotFound("gone"), http.StatusNotFound},
		{"domain state", apperrors.DomainState("not started"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := decodeResponse(t, w)
			if resp.Success {
				t.Error("error responses must not report success")
			}
		})
	}
}

func TestInvestmentCreateRequiresAdmin(t *testing.T) {
	h := NewInvestmentHandler(nil)
	user := &domain.User{ID: 1, Username: "alice", IsActive: true}

	w := httptest.NewRecorder()
	h.Create(w, requestAs(t, user, http.MethodPost, "/api/v1/investments", `{"title":"x"}`))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin create, got %d", w.Code)
	}
}

func TestInvestmentDeleteRequiresAdmin(t *testing.T) {
	h := NewInvestmentHandler(nil)
	user := &domain.User{ID: 1, Username: "alice", IsActive: true}

	w := httptest.NewRecorder()
	h.Delete(w, requestAs(t, user, http.MethodDelete, "/api/v1/investments/1", ""))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin delete, got %d", w.Code)
	}
}

func TestProgressAllRequiresAdmin(t *testing.T) {
	h := NewProgressHandler(nil)
	user := &domain.User{ID: 1, Username: "alice", IsActive: true}

	w := httptest.NewRecorder()
	h.All(w, requestAs(t, user, http.MethodGet, "/api/v1/progress/all", ""))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin portfolio report, got %d", w.Code)
	}
}

func TestProgressMineRejectsForeignUserID(t *testing.T) {
	h := NewProgressHandler(nil)
	user := &domain.User{ID: 1, Username: "alice", IsActive: true}

	w := httptest.NewRecorder()
	h.Mine(w, requestAs(t, user, http.MethodGet, "/api/v1/progress?user_id=2", ""))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for reading another user's report, got %d", w.Code)
	}
}

func TestJWTAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached without credentials")
	})
	mw := JWTAuthMiddleware(nil)(next)

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/investments", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without Authorization header, got %d", w.Code)
	}
}

func TestJWTAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached with a malformed header")
	})
	mw := JWTAuthMiddleware(nil)(next)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/investments", nil)
	r.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for malformed header, got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	RequestIDMiddleware(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set("X-Request-ID", "inbound-id")
	w = httptest.NewRecorder()
	RequestIDMiddleware(next).ServeHTTP(w, r)
	if got := w.Header().Get("X-Request-ID"); got != "inbound-id" {
		t.Errorf("expected inbound request id to be echoed, got %q", got)
	}
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?skip=20&limit=50", nil)
	skip, limit := parsePagination(r)
	if skip != 20 || limit != 50 {
		t.Errorf("expected skip=20 limit=50, got skip=%d limit=%d", skip, limit)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/transactions?skip=junk&limit=-3", nil)
	skip, limit = parsePagination(r)
	if skip != 0 || limit != 0 {
		t.Errorf("expected garbage values ignored, got skip=%d limit=%d", skip, limit)
	}
}
