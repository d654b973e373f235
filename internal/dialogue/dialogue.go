// Package dialogue implements the Dialogue State Machine (DSM): the core
// controller that, given (call_id, utterance, RuntimeStatus), reads the
// Call Session Store, consults the Utterance Parser, Menu Index, Delivery
// Configuration and Customer Directory, writes the session back, and
// returns the reply messages and next state.
package dialogue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ristoranteadam/sara/internal/customer"
	"github.com/ristoranteadam/sara/internal/delivery"
	"github.com/ristoranteadam/sara/internal/menu"
	"github.com/ristoranteadam/sara/internal/nlu"
	"github.com/ristoranteadam/sara/internal/order"
	"github.com/ristoranteadam/sara/internal/prompts"
	"github.com/ristoranteadam/sara/internal/runtime"
	"github.com/ristoranteadam/sara/internal/sanitize"
	"github.com/ristoranteadam/sara/internal/session"
)

// turnSanitizer redacts phone numbers, addresses and other sensitive
// fragments a caller may speak before an utterance is written to the logs.
var turnSanitizer = sanitize.NewDefault()

// State names, spec.md §4.4.
const (
	StateGreet          = "greet"
	StateAskItems       = "ask_items"
	StateConfirmMore    = "confirm_more"
	StateConfirmSummary = "confirm_summary"
	StateFulfilment     = "fulfilment"
	StatePhone          = "phone"
	StateCRMConfirm     = "crm_confirm"
	StateAddress        = "address"
	StateEnd            = "end"
)

// Controller wires the DSM's dependencies together.
type Controller struct {
	Sessions  *session.Store
	Menu      *menu.Index
	Delivery  delivery.Config
	Customers *customer.Directory
	Orders    *order.Service
	Prompts   *prompts.Set
	Location  *time.Location
	Now       func() time.Time
	Logger    *zap.Logger
}

// Handle runs one DSM turn for callID given the caller's utterance and the
// current RuntimeStatus, per spec.md §4.4.
func (c *Controller) Handle(ctx context.Context, callID, utterance string, status runtime.Status) ([]string, string, error) {
	cs := c.Sessions.Get(ctx, callID)

	if status.Mode == "closed" {
		cs.State = StateEnd
		_ = c.Sessions.Save(ctx, cs)
		return []string{c.Prompts.Render("greet_closed", nil)}, StateEnd, nil
	}

	fromState := cs.State
	messages, next := c.transition(ctx, &cs, utterance, status)
	cs.State = next
	cs.TurnCount++
	if c.Logger != nil {
		c.Logger.Debug("dialogue turn",
			zap.String("call_id", callID),
			zap.String("from_state", fromState),
			zap.String("next_state", next),
			zap.String("utterance", turnSanitizer.String(utterance)),
		)
	}
	if err := c.Sessions.Save(ctx, cs); err != nil {
		return messages, next, err
	}
	return messages, next, nil
}

func (c *Controller) transition(ctx context.Context, cs *session.CallSession, utterance string, status runtime.Status) ([]string, string) {
	switch cs.State {
	case StateGreet, "":
		return []string{c.Prompts.Render("ask_items", nil)}, StateAskItems

	case StateAskItems:
		return c.handleItemsTurn(cs, utterance, StateConfirmMore)

	case StateConfirmMore:
		switch nlu.YesNo(utterance) {
		case nlu.Yes:
			return []string{c.Prompts.Render("ask_items", nil)}, StateAskItems
		case nlu.No:
			return []string{
				c.Prompts.Render("confirm_items", map[string]string{"items": c.itemsText(cs)}),
				c.Prompts.Render("ask_items_confirm_ok", nil),
			}, StateConfirmSummary
		default:
			parsed := nlu.ParseItems(utterance, c.Menu)
			if len(parsed) > 0 {
				return c.handleItemsTurn(cs, utterance, StateConfirmMore)
			}
			return []string{c.Prompts.Render("ask_items_more", nil)}, StateConfirmMore
		}

	case StateConfirmSummary:
		switch nlu.YesNo(utterance) {
		case nlu.Yes:
			amount := order.Total(orderLines(cs.Items))
			return []string{
				c.Prompts.Render("total_after_confirm", map[string]string{"amount": wholeEuros(amount)}),
				c.Prompts.Render("ask_fulfilment", nil),
			}, StateFulfilment
		case nlu.No:
			cs.Items = nil
			return []string{c.Prompts.Render("ask_items", nil)}, StateAskItems
		default:
			return []string{c.Prompts.Render("ask_items_confirm_ok", nil)}, StateConfirmSummary
		}

	case StateFulfilment:
		n := nlu.Normalize(utterance)
		switch {
		case strings.Contains(n, "afha") || strings.Contains(n, "ophalen"):
			cs.Fulfilment = order.FulfilmentPickup
			return c.finalizePickup(ctx, cs, status)
		case strings.Contains(n, "bezorg") || strings.Contains(n, "thuis"):
			cs.Fulfilment = order.FulfilmentDelivery
			return []string{c.Prompts.Render("ask_phone_for_delivery", nil)}, StatePhone
		default:
			return []string{c.Prompts.Render("ask_fulfilment", nil)}, StateFulfilment
		}

	case StatePhone:
		digits := nlu.PhoneDigits(utterance)
		cs.Phone = digits
		if digits != "" && c.Customers != nil {
			if rec, found := c.Customers.Lookup(digits); found {
				cs.Street = rec.Street
				cs.HouseNumber = rec.HouseNumber
				cs.Postcode = rec.Postcode
				return []string{c.lookupFoundMessage(cs)}, StateCRMConfirm
			}
		}
		return []string{c.Prompts.Render("confirm_lookup_missing", nil)}, StateAddress

	case StateCRMConfirm:
		switch nlu.YesNo(utterance) {
		case nlu.Yes:
			return c.finalizeDelivery(ctx, cs, status)
		case nlu.No:
			return []string{c.Prompts.Render("confirm_lookup_missing", nil)}, StateAddress
		default:
			return []string{c.lookupFoundMessage(cs)}, StateCRMConfirm
		}

	case StateAddress:
		postcode, okPC := nlu.Postcode(utterance)
		house, okHouse := nlu.HouseNumber(utterance)
		if okPC && okHouse {
			cs.Postcode = postcode
			cs.HouseNumber = house
			return c.finalizeDelivery(ctx, cs, status)
		}
		return []string{c.Prompts.Render("ask_postcode_house", nil)}, StateAddress

	default:
		return []string{c.Prompts.Render("ask_items", nil)}, StateAskItems
	}
}

// handleItemsTurn parses items from the utterance and, on a match, emits
// an item_added reply per matched item plus a single ask_items_more
// trailer; on a bare "pizza" mention with no specific match it asks which
// pizza and stays in ask_items; otherwise it just re-prompts.
func (c *Controller) handleItemsTurn(cs *session.CallSession, utterance, onMatchState string) ([]string, string) {
	parsed := nlu.ParseItems(utterance, c.Menu)
	if len(parsed) == 0 {
		if nlu.MentionsUnresolvedPizza(utterance, c.Menu) {
			return []string{c.Prompts.Render("ask_pizza_which", nil)}, StateAskItems
		}
		return []string{c.Prompts.Render("ask_items", nil)}, StateAskItems
	}

	messages := make([]string, 0, len(parsed)+1)
	for _, pi := range parsed {
		cs.Items = append(cs.Items, session.OrderLine{
			Code:        pi.Item.Code,
			DisplayName: pi.Item.DisplayName,
			Quantity:    pi.Quantity,
			UnitPrice:   pi.Item.Price,
		})
		messages = append(messages, c.Prompts.Render("item_added", map[string]string{
			"qty":  strconv.Itoa(pi.Quantity),
			"name": pi.Item.DisplayName,
		}))
	}
	messages = append(messages, c.Prompts.Render("ask_items_more", nil))
	return messages, onMatchState
}

func (c *Controller) itemsText(cs *session.CallSession) string {
	parts := make([]string, 0, len(cs.Items))
	for _, it := range cs.Items {
		parts = append(parts, fmt.Sprintf("%d× %s", it.Quantity, it.DisplayName))
	}
	return strings.Join(parts, ", ")
}

func (c *Controller) lookupFoundMessage(cs *session.CallSession) string {
	return c.Prompts.Render("confirm_lookup_found", map[string]string{
		"straat":   cs.Street,
		"huisnr":   cs.HouseNumber,
		"postcode": cs.Postcode,
	})
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Controller) readyTime(minutes int) string {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	ready := c.now().In(loc).Add(time.Duration(minutes) * time.Minute)
	return ready.Format("15:04")
}

func (c *Controller) finalizePickup(ctx context.Context, cs *session.CallSession, status runtime.Status) ([]string, string) {
	minutes := c.Delivery.ETAMinutes("pickup", status.DelayPastaMinutes, status.DelaySchotelsMinutes)
	ready := c.readyTime(minutes)

	ord := order.New(cs.CallID, orderLines(cs.Items), order.FulfilmentPickup)
	ord.CustomerPhone = cs.Phone
	ord.ETAMinutes = minutes
	if c.Orders != nil {
		_ = c.Orders.Submit(ctx, ord)
	}

	return []string{
		c.Prompts.Render("pickup_eta", map[string]string{"time": ready}),
		c.Prompts.Render("closing_pickup", nil),
	}, StateEnd
}

func (c *Controller) finalizeDelivery(ctx context.Context, cs *session.CallSession, status runtime.Status) ([]string, string) {
	fee, _ := c.Delivery.FeeFor(cs.Postcode)
	minutes := c.Delivery.ETAMinutes("delivery", status.DelayPastaMinutes, status.DelaySchotelsMinutes)
	ready := c.readyTime(minutes)
	amount := order.Total(orderLines(cs.Items)) + fee

	ord := order.New(cs.CallID, orderLines(cs.Items), order.FulfilmentDelivery)
	ord.CustomerPhone = cs.Phone
	ord.Street = cs.Street
	ord.HouseNumber = cs.HouseNumber
	ord.Postcode = cs.Postcode
	ord.DeliveryFee = fee
	ord.TotalAmount = amount
	ord.ETAMinutes = minutes
	if c.Orders != nil {
		_ = c.Orders.Submit(ctx, ord)
	}

	return []string{
		c.Prompts.Render("delivery_eta", map[string]string{"time": ready}),
		c.Prompts.Render("total_after_confirm", map[string]string{"amount": wholeEuros(amount)}),
		c.Prompts.Render("closing_delivery", nil),
	}, StateEnd
}

func orderLines(items []session.OrderLine) []order.Line {
	out := make([]order.Line, len(items))
	for i, it := range items {
		out[i] = order.Line{
			Code:        it.Code,
			DisplayName: it.DisplayName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return out
}

// wholeEuros renders an amount rounded to whole euros for speech, per
// spec.md §4.4's "display rounded to whole euros when speaking
// total_after_confirm".
func wholeEuros(amount float64) string {
	return strconv.Itoa(int(amount + 0.5))
}
