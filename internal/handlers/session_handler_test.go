package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dropcars/internal/session"
	"dropcars/pkg/logger"

	"github.com/gin-gonic/gin"
)

type stubProfiles struct {
	err error
}

func (s *stubProfiles) LoadProfile(context.Context, *session.Credential) error {
	return s.err
}

func newSessionRouter(t *testing.T, store session.Store, profiles session.ProfileLoader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.NewLogger(&logger.Config{Level: "error", Format: "text", Output: "stderr"})
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}

	r := gin.New()
	h := NewSessionHandler(session.NewResolver(store, profiles, log))
	r.GET("/api/v1/session", h.Resolve)
	return r
}

func resolvedRole(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Data struct {
			Role string `json:"role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return envelope.Data.Role
}

func TestResolveSessionPrefersLatestLogin(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, "dev1", &session.Credential{Role: session.RoleOwner, Token: "o", UserID: "owner-1", LastLoginAt: base}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "dev1", &session.Credential{Role: session.RoleDriver, Token: "d", UserID: "driver-1", LastLoginAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	router := newSessionRouter(t, store, &stubProfiles{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set("X-Device-ID", "dev1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if role := resolvedRole(t, w.Body.Bytes()); role != string(session.RoleDriver) {
		t.Errorf("resolved role = %q, want driver", role)
	}
}

func TestResolveSessionRequiresDeviceHeader(t *testing.T) {
	router := newSessionRouter(t, session.NewMemoryStore(), &stubProfiles{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestResolveSessionDegradesOnProfileLoadFailure(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	if err := store.Save(ctx, "dev1", &session.Credential{Role: session.RoleOwner, Token: "o", UserID: "owner-1", LastLoginAt: time.Now()}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	router := newSessionRouter(t, store, &stubProfiles{err: fmt.Errorf("account gone")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set("X-Device-ID", "dev1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if role := resolvedRole(t, w.Body.Bytes()); role != "" {
		t.Errorf("resolved role = %q, want none so the device re-authenticates", role)
	}
}
