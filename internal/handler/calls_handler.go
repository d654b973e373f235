package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ristoranteadam/sara/internal/customer"
	"github.com/ristoranteadam/sara/internal/delivery"
	"github.com/ristoranteadam/sara/internal/menu"
	"github.com/ristoranteadam/sara/internal/metrics"
	"github.com/ristoranteadam/sara/internal/order"
	"github.com/ristoranteadam/sara/internal/overrides"
)

// CallsHandler serves the CRM lookup and order-finalisation endpoints named
// in spec.md §6, both callable independently of a live telephony call.
type CallsHandler struct {
	menu      *menu.Index
	delivery  delivery.Config
	customers *customer.Directory
	orders    *order.Service
	overrides *overrides.Store
	events    *metrics.BusinessEventLogger
	now       func() time.Time
	logger    *zap.Logger
}

// CallsHandlerConfig holds the dependencies for CallsHandler.
type CallsHandlerConfig struct {
	Menu      *menu.Index
	Delivery  delivery.Config
	Customers *customer.Directory
	Orders    *order.Service
	Overrides *overrides.Store
	Events    *metrics.BusinessEventLogger
	Now       func() time.Time
	Logger    *zap.Logger
}

// NewCallsHandler constructs a CallsHandler.
func NewCallsHandler(cfg CallsHandlerConfig) *CallsHandler {
	if cfg.Logger == nil {
		panic("logger is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &CallsHandler{
		menu:      cfg.Menu,
		delivery:  cfg.Delivery,
		customers: cfg.Customers,
		orders:    cfg.Orders,
		overrides: cfg.Overrides,
		events:    cfg.Events,
		now:       now,
		logger:    cfg.Logger,
	}
}

type lookupResponse struct {
	Found       bool   `json:"found"`
	Tel         string `json:"tel"`
	Postcode    string `json:"postcode,omitempty"`
	Street      string `json:"street,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
}

// HandleCRMLookup implements GET /crm/lookup?tel=…, per spec.md §6/§4.7.
func (h *CallsHandler) HandleCRMLookup(w http.ResponseWriter, r *http.Request) {
	tel := r.URL.Query().Get("tel")
	if tel == "" {
		APIErrorWithRequest(w, r, http.StatusBadRequest, "tel query parameter is required")
		return
	}

	rec, found := h.customers.Lookup(tel)
	if !found {
		JSONWithRequest(w, r, http.StatusOK, lookupResponse{Found: false, Tel: tel})
		return
	}

	JSONWithRequest(w, r, http.StatusOK, lookupResponse{
		Found:       true,
		Tel:         tel,
		Postcode:    rec.Postcode,
		Street:      rec.Street,
		HouseNumber: rec.HouseNumber,
		FirstName:   rec.FirstName,
		LastName:    rec.LastName,
	})
}

// orderLine is the wire shape for one submitted order item: a menu code and
// quantity, with the price and display name resolved server-side from the
// Menu Index so a caller cannot submit an arbitrary price.
type orderLine struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

type orderSubmitRequest struct {
	CallID        string      `json:"call_id"`
	Fulfilment    string      `json:"fulfilment"`
	Items         []orderLine `json:"items"`
	CustomerPhone string      `json:"customer_phone"`
	Street        string      `json:"street,omitempty"`
	HouseNumber   string      `json:"house_number,omitempty"`
	Postcode      string      `json:"postcode,omitempty"`
	Payment       string      `json:"payment,omitempty"`
}

type orderSubmitResponse struct {
	OK      bool   `json:"ok"`
	OrderID string `json:"order_id,omitempty"`
}

// HandleOrderSubmit implements POST /order/submit, per spec.md §6/§4.5-4.6.
func (h *CallsHandler) HandleOrderSubmit(w http.ResponseWriter, r *http.Request) {
	var req orderSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		APIErrorWithRequest(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	var fieldErrors []ValidationFieldError
	if req.Fulfilment != order.FulfilmentPickup && req.Fulfilment != order.FulfilmentDelivery {
		fieldErrors = append(fieldErrors, InvalidValueError("fulfilment", "must be pickup or delivery"))
	}
	if len(req.Items) == 0 {
		fieldErrors = append(fieldErrors, RequiredFieldError("items"))
	}

	lines := make([]order.Line, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			fieldErrors = append(fieldErrors, InvalidValueError("items[].quantity", "must be positive"))
			continue
		}
		menuItem, ok := h.menu.ByCode(item.Code)
		if !ok {
			fieldErrors = append(fieldErrors, InvalidValueError("items[].code", "unknown item code: "+item.Code))
			continue
		}
		lines = append(lines, order.Line{
			Code:        menuItem.Code,
			DisplayName: menuItem.DisplayName,
			Quantity:    item.Quantity,
			UnitPrice:   menuItem.Price,
		})
	}
	if len(fieldErrors) > 0 {
		APIValidationErrorWithRequest(w, r, fieldErrors)
		return
	}

	ord := order.New(req.CallID, lines, req.Fulfilment)
	ord.CustomerPhone = req.CustomerPhone
	ord.Payment = req.Payment

	ov := h.overrides.Get(r.Context())
	if req.Fulfilment == order.FulfilmentDelivery {
		ord.Street = req.Street
		ord.HouseNumber = req.HouseNumber
		ord.Postcode = req.Postcode
		fee, inZone := h.delivery.FeeFor(req.Postcode)
		if !inZone {
			APIValidationErrorWithRequest(w, r, []ValidationFieldError{InvalidValueError("postcode", "is outside the delivery area")})
			return
		}
		ord.DeliveryFee = fee
		ord.TotalAmount = order.Total(lines) + fee
		ord.ETAMinutes = h.delivery.ETAMinutes("delivery", ov.DelayPastaMinutes, ov.DelaySchotelsMinutes)
	} else {
		ord.ETAMinutes = h.delivery.ETAMinutes("pickup", ov.DelayPastaMinutes, ov.DelaySchotelsMinutes)
	}

	if err := h.orders.Submit(r.Context(), ord); err != nil {
		h.logger.Error("order submit failed", zap.String("call_id", req.CallID), zap.Error(err))
		if h.events != nil {
			h.events.OrderSubmitted(r.Context(), callUUID(req.CallID), ord.ID.String(), req.Fulfilment, int(ord.TotalAmount*100+0.5), false)
		}
		JSONWithRequest(w, r, http.StatusServiceUnavailable, orderSubmitResponse{OK: false})
		return
	}

	if h.events != nil {
		h.events.OrderSubmitted(r.Context(), callUUID(req.CallID), ord.ID.String(), req.Fulfilment, int(ord.TotalAmount*100+0.5), true)
	}

	JSONWithRequest(w, r, http.StatusOK, orderSubmitResponse{OK: true, OrderID: ord.ID.String()})
}
