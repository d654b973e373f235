package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ristoranteadam/sara/internal/config"
	"github.com/ristoranteadam/sara/internal/customer"
	"github.com/ristoranteadam/sara/internal/delivery"
	"github.com/ristoranteadam/sara/internal/dialogue"
	"github.com/ristoranteadam/sara/internal/kv"
	"github.com/ristoranteadam/sara/internal/menu"
	"github.com/ristoranteadam/sara/internal/order"
	"github.com/ristoranteadam/sara/internal/overrides"
	"github.com/ristoranteadam/sara/internal/prompts"
	"github.com/ristoranteadam/sara/internal/repository"
	"github.com/ristoranteadam/sara/internal/session"
)

func newTestWebhookHandler(t *testing.T, now func() time.Time) (*WebhookHandler, *overrides.Store) {
	t.Helper()
	idx, err := menu.Parse([]byte(`[{"name":"Pizza Margherita","price":9.5,"code":"pizza_margherita"}]`))
	if err != nil {
		t.Fatalf("failed to parse test menu: %v", err)
	}
	store := kv.NewFake(now)
	ps := &prompts.Set{}
	ps.SetForTest(map[string]string{
		"greet_open_afternoon": "Goedemiddag, met Ristorante Adam.",
		"greet_closed":         "We zijn gesloten.",
		"ask_items":            "Wat wilt u bestellen?",
	})
	overridesStore := overrides.NewStore(store, zap.NewNop())

	controller := &dialogue.Controller{
		Sessions:  session.NewStore(store),
		Menu:      idx,
		Delivery:  delivery.Default(),
		Customers: customer.New("/nonexistent/customers.csv"),
		Orders:    order.NewService(repository.NewOrderRepository(nil), store),
		Prompts:   ps,
		Location:  time.UTC,
		Now:       now,
	}

	h := NewWebhookHandler(WebhookHandlerConfig{
		Controller: controller,
		Overrides:  overridesStore,
		Telephony: config.TelephonyConfig{
			CallerID:       "+31000000000",
			FallbackNumber: "+31611111111",
			TTSBaseURL:     "https://tts.example.test",
			PublicBaseURL:  "https://sara.example.test",
		},
		Logger: zap.NewNop(),
	})
	return h, overridesStore
}

func formRequest(method, path string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestWebhookHandler_HandleIncoming_BotDisabled_DialsFallback(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC) }
	h, overridesStore := newTestWebhookHandler(t, now)

	ctx := context.Background()
	ov := overrides.Default()
	ov.BotEnabled = false
	if err := overridesStore.Put(ctx, ov); err != nil {
		t.Fatalf("failed to write overrides: %v", err)
	}

	req := formRequest(http.MethodPost, "/voice/incoming", url.Values{"CallSid": {"CA123"}})
	rec := httptest.NewRecorder()

	h.HandleIncoming(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<Dial>") {
		t.Errorf("expected fallback dial document, got: %s", rec.Body.String())
	}
}

func TestWebhookHandler_HandleIncoming_Open_PlaysGreetingAndRedirects(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC) }
	h, _ := newTestWebhookHandler(t, now)

	req := formRequest(http.MethodPost, "/voice/incoming", url.Values{"CallSid": {"CA123"}, "From": {"+31612345678"}})
	rec := httptest.NewRecorder()

	h.HandleIncoming(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<Redirect>") {
		t.Errorf("expected a redirect to the step endpoint, got: %s", body)
	}
}

func TestWebhookHandler_HandleStep_GathersSpeech(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC) }
	h, _ := newTestWebhookHandler(t, now)

	req := formRequest(http.MethodPost, "/voice/step", nil)
	rec := httptest.NewRecorder()

	h.HandleStep(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<Gather") {
		t.Errorf("expected a Gather verb, got: %s", rec.Body.String())
	}
}

func TestWebhookHandler_HandleStatus_NoContent(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC) }
	h, _ := newTestWebhookHandler(t, now)

	req := formRequest(http.MethodPost, "/voice/status", url.Values{"CallSid": {"CA123"}, "CallStatus": {"completed"}})
	rec := httptest.NewRecorder()

	h.HandleStatus(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
