package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ristoranteadam/sara/internal/kv"
	"github.com/ristoranteadam/sara/internal/overrides"
)

// fakePinger is a test double for Pinger that always reports healthy.
type fakePinger struct{}

func (fakePinger) Ping(ctx context.Context) error { return nil }

func newTestAdminHandler() *AdminHandler {
	now := func() time.Time { return time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC) }
	return NewAdminHandler(AdminHandlerConfig{
		Overrides: overrides.NewStore(kv.NewFake(now), zap.NewNop()),
		Store:     fakePinger{},
		Location:  time.UTC,
		Now:       now,
		AuthUser:  "admin",
		AuthPass:  "secret",
		Logger:    zap.NewNop(),
	})
}

func TestAdminHandler_HandleRuntimeStatus(t *testing.T) {
	h := newTestAdminHandler()
	req := httptest.NewRequest(http.MethodGet, "/runtime/status", nil)
	rec := httptest.NewRecorder()

	h.HandleRuntimeStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Mode != "open" {
		t.Errorf("expected open at 18:00, got %q", resp.Mode)
	}
}

func TestAdminHandler_HandleToggles_Unauthorized(t *testing.T) {
	h := newTestAdminHandler()
	req := httptest.NewRequest(http.MethodPost, "/admin/toggles", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	h.HandleToggles(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminHandler_HandleToggles_InvalidDelay(t *testing.T) {
	h := newTestAdminHandler()
	body := `{"bot_enabled":true,"delay_pasta_minutes":7,"delay_schotels_minutes":0}`
	req := httptest.NewRequest(http.MethodPost, "/admin/toggles", bytes.NewBufferString(body))
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()

	h.HandleToggles(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid delay_pasta_minutes, got %d", rec.Code)
	}
}

func TestAdminHandler_HandleToggles_Valid(t *testing.T) {
	h := newTestAdminHandler()
	body := `{"bot_enabled":false,"delay_pasta_minutes":20,"delay_schotels_minutes":0}`
	req := httptest.NewRequest(http.MethodPost, "/admin/toggles", bytes.NewBufferString(body))
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()

	h.HandleToggles(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.BotEnabled {
		t.Error("expected bot_enabled to be false after toggle")
	}
	if resp.DelayPastaMinutes != 20 {
		t.Errorf("expected delay_pasta_minutes=20, got %d", resp.DelayPastaMinutes)
	}
}

func TestAdminHandler_HandleHealthz(t *testing.T) {
	h := newTestAdminHandler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.HandleHealthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["ok"] != true {
		t.Errorf("expected ok=true, got %v", resp["ok"])
	}
	if resp["tz"] != "UTC" {
		t.Errorf("expected tz=UTC, got %v", resp["tz"])
	}
}
