package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ristoranteadam/sara/internal/audit"
	"github.com/ristoranteadam/sara/internal/config"
	"github.com/ristoranteadam/sara/internal/dialogue"
	"github.com/ristoranteadam/sara/internal/greeting"
	"github.com/ristoranteadam/sara/internal/metrics"
	"github.com/ristoranteadam/sara/internal/overrides"
	"github.com/ristoranteadam/sara/internal/runtime"
	"github.com/ristoranteadam/sara/internal/telephony"
)

// callUUID derives a stable UUID from a provider call identifier (a plain
// string, e.g. Twilio's CallSid) so string call IDs can still be correlated
// through the business-event logger's uuid.UUID-keyed fields.
func callUUID(callID string) uuid.UUID {
	return uuid.NewSHA1(uuid.Nil, []byte(callID))
}

// form field names the telephony provider POSTs on each callback: a call
// identifier and, on the step callback, the recognised speech transcript,
// per spec.md §4.9/§6.
const (
	fieldCallID  = "CallSid"
	fieldFrom    = "From"
	fieldSpeech  = "SpeechResult"
	fieldStatus  = "CallStatus"
)

// WebhookHandler implements the Webhook Adapter (WA): it translates the
// telephony provider's incoming/step/handle/status callbacks into DSM
// invocations and renders the replies as call-control documents.
type WebhookHandler struct {
	controller *dialogue.Controller
	overrides  *overrides.Store
	audit      *audit.Logger
	events     *metrics.BusinessEventLogger
	telephony  config.TelephonyConfig
	logger     *zap.Logger
}

// WebhookHandlerConfig holds the dependencies for WebhookHandler.
type WebhookHandlerConfig struct {
	Controller *dialogue.Controller
	Overrides  *overrides.Store
	Audit      *audit.Logger
	Events     *metrics.BusinessEventLogger
	Telephony  config.TelephonyConfig
	Logger     *zap.Logger
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(cfg WebhookHandlerConfig) *WebhookHandler {
	if cfg.Logger == nil {
		panic("logger is required")
	}
	return &WebhookHandler{
		controller: cfg.Controller,
		overrides:  cfg.Overrides,
		audit:      cfg.Audit,
		events:     cfg.Events,
		telephony:  cfg.Telephony,
		logger:     cfg.Logger,
	}
}

func (h *WebhookHandler) currentStatus(r *http.Request) runtime.Status {
	ov := h.overrides.Get(r.Context())
	return runtime.Evaluate(h.controller.Now(), ov)
}

func (h *WebhookHandler) writeDocument(w http.ResponseWriter, doc telephony.Document) {
	out, err := telephony.Render(doc)
	if err != nil {
		h.logger.Error("failed to render call-control document", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, _ = w.Write(out)
}

func (h *WebhookHandler) stepURL() string {
	return h.telephony.PublicBaseURL + "/voice/step"
}

func (h *WebhookHandler) handleURL() string {
	return h.telephony.PublicBaseURL + "/voice/handle"
}

// HandleIncoming answers the initial callback: if the bot is disabled it
// dials the fallback number and stops, otherwise it plays the greeting and
// redirects to the step endpoint, per spec.md §4.9 steps 1-2.
func (h *WebhookHandler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	status := h.currentStatus(r)

	if !status.BotEnabled {
		h.writeDocument(w, telephony.FallbackDocument(h.telephony.CallerID, h.telephony.FallbackNumber))
		return
	}

	callID := r.FormValue(fieldCallID)
	from := r.FormValue(fieldFrom)
	line := greeting.Select(status, h.controller.Now(), h.telephony.RecordCalls, h.controller.Prompts)
	if h.audit != nil {
		h.audit.WebhookReceived(r.Context(), "telephony", callID, r.RemoteAddr, GetRequestIDFromContext(r.Context()))
	}
	if h.events != nil {
		h.events.CallReceived(r.Context(), callUUID(callID), "telephony", from)
	}
	h.writeDocument(w, telephony.IncomingDocument(h.telephony.TTSBaseURL, line, h.stepURL()))
}

// HandleStep gathers speech with Dutch hints and, on timeout, redirects back
// to itself, per spec.md §4.9 step 3.
func (h *WebhookHandler) HandleStep(w http.ResponseWriter, r *http.Request) {
	h.writeDocument(w, telephony.StepDocument(h.stepURL(), h.handleURL()))
}

// HandleTurn runs one DSM turn against the gathered speech and renders the
// replies as sequential plays, redirecting to step or ending, per spec.md
// §4.9 step 4.
func (h *WebhookHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	callID := r.FormValue(fieldCallID)
	utterance := r.FormValue(fieldSpeech)
	status := h.currentStatus(r)

	if !status.BotEnabled {
		h.writeDocument(w, telephony.FallbackDocument(h.telephony.CallerID, h.telephony.FallbackNumber))
		return
	}

	messages, next, err := h.controller.Handle(r.Context(), callID, utterance, status)
	if err != nil {
		h.logger.Error("dialogue turn failed", zap.String("call_id", callID), zap.Error(err))
	}
	h.writeDocument(w, telephony.HandleDocument(h.telephony.TTSBaseURL, messages, h.stepURL(), next))
}

// HandleStatus appends provider call-status callbacks to the audit log,
// best-effort, per spec.md §4.9 step 5 / §6.
func (h *WebhookHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	callID := r.FormValue(fieldCallID)
	callStatus := r.FormValue(fieldStatus)
	if h.audit != nil {
		h.audit.WebhookReceived(r.Context(), "telephony-status:"+callStatus, callID, r.RemoteAddr, GetRequestIDFromContext(r.Context()))
	}
	if h.events != nil && isTerminalCallStatus(callStatus) {
		h.events.CallCompleted(r.Context(), callUUID(callID), "telephony", 0, callStatus)
	}
	w.WriteHeader(http.StatusNoContent)
}

func isTerminalCallStatus(status string) bool {
	switch strings.ToLower(status) {
	case "completed", "busy", "failed", "no-answer", "canceled":
		return true
	default:
		return false
	}
}
