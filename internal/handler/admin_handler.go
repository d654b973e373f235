package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ristoranteadam/sara/internal/overrides"
	"github.com/ristoranteadam/sara/internal/runtime"
)

// Pinger reports whether the runtime key-value store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AdminHandler serves the operator-facing runtime status, override toggles
// and health endpoints named in spec.md §6.
type AdminHandler struct {
	overrides   *overrides.Store
	store       Pinger
	location    *time.Location
	now         func() time.Time
	authUser    string
	authPass    string
	logger      *zap.Logger
}

// AdminHandlerConfig holds the dependencies for AdminHandler.
type AdminHandlerConfig struct {
	Overrides *overrides.Store
	Store     Pinger
	Location  *time.Location
	Now       func() time.Time
	AuthUser  string
	AuthPass  string
	Logger    *zap.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(cfg AdminHandlerConfig) *AdminHandler {
	if cfg.Logger == nil {
		panic("logger is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AdminHandler{
		overrides: cfg.Overrides,
		store:     cfg.Store,
		location:  cfg.Location,
		now:       now,
		authUser:  cfg.AuthUser,
		authPass:  cfg.AuthPass,
		logger:    cfg.Logger,
	}
}

// statusResponse is the RuntimeStatus wire shape, spec.md §3/§6.
type statusResponse struct {
	Mode                 string `json:"mode"`
	DeliveryEnabled      bool   `json:"delivery_enabled"`
	PickupEnabled        bool   `json:"pickup_enabled"`
	KitchenClosed        bool   `json:"kitchen_closed"`
	BotEnabled           bool   `json:"bot_enabled"`
	PastaAvailable       bool   `json:"pasta_available"`
	DelayPastaMinutes    int    `json:"delay_pasta_minutes"`
	DelaySchotelsMinutes int    `json:"delay_schotels_minutes"`
	CloseReason          string `json:"close_reason,omitempty"`
	Window               string `json:"window"`
}

func toStatusResponse(s runtime.Status) statusResponse {
	return statusResponse{
		Mode:                 s.Mode,
		DeliveryEnabled:      s.DeliveryEnabled,
		PickupEnabled:        s.PickupEnabled,
		KitchenClosed:        s.KitchenClosed,
		BotEnabled:           s.BotEnabled,
		PastaAvailable:       s.PastaAvailable,
		DelayPastaMinutes:    s.DelayPastaMinutes,
		DelaySchotelsMinutes: s.DelaySchotelsMinutes,
		CloseReason:          s.CloseReason,
		Window:               s.Window,
	}
}

func (h *AdminHandler) currentStatus(ctx context.Context) runtime.Status {
	ov := h.overrides.Get(ctx)
	now := h.now()
	if h.location != nil {
		now = now.In(h.location)
	}
	return runtime.Evaluate(now, ov)
}

// HandleRuntimeStatus implements GET /runtime/status.
func (h *AdminHandler) HandleRuntimeStatus(w http.ResponseWriter, r *http.Request) {
	JSONWithRequest(w, r, http.StatusOK, toStatusResponse(h.currentStatus(r.Context())))
}

// HandleToggles implements POST /admin/toggles (Basic-Auth). It validates
// and writes Overrides, returning the fresh RuntimeStatus; invalid
// delay_* values yield 400, per spec.md §6.
func (h *AdminHandler) HandleToggles(w http.ResponseWriter, r *http.Request) {
	if !h.checkBasicAuth(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="sara-admin"`)
		APIErrorWithRequest(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var ov overrides.Overrides
	if err := json.NewDecoder(r.Body).Decode(&ov); err != nil {
		APIErrorWithRequest(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if ov.IsOpenOverride == "" {
		ov.IsOpenOverride = overrides.OpenOverrideAuto
	}
	if ov.TTLMinutes == 0 {
		ov.TTLMinutes = 180
	}

	if err := ov.Validate(); err != nil {
		APIErrorWithRequest(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.overrides.Put(r.Context(), ov); err != nil {
		h.logger.Error("admin toggles store write failed", zap.Error(err))
		APIErrorWithRequest(w, r, http.StatusServiceUnavailable, "overrides store unavailable")
		return
	}

	JSONWithRequest(w, r, http.StatusOK, toStatusResponse(h.currentStatus(r.Context())))
}

// HandleHealthz implements GET /healthz: {ok, time, tz}, with ok reflecting
// store reachability, per spec.md §6.
func (h *AdminHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok := true
	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			ok = false
			h.logger.Warn("healthz store ping failed", zap.Error(err))
		}
	}

	tz := "UTC"
	if h.location != nil {
		tz = h.location.String()
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	JSONWithRequest(w, r, status, map[string]interface{}{
		"ok":   ok,
		"time": h.now().Format(time.RFC3339),
		"tz":   tz,
	})
}

func (h *AdminHandler) checkBasicAuth(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(h.authUser)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(h.authPass)) == 1
	return userMatch && passMatch
}
