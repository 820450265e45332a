package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/cart"
	"github.com/TON618OFF/FactorioStore-sub000/internal/catalog"
	"github.com/TON618OFF/FactorioStore-sub000/internal/checkout"
	"github.com/TON618OFF/FactorioStore-sub000/internal/identity"
	"github.com/TON618OFF/FactorioStore-sub000/internal/orders"
)

type CheckoutHandler struct {
	registry *cart.Registry
	orders   *orders.Repository
	catalog  *catalog.Service
	events   checkout.EventPublisher // may be nil
	timeout  time.Duration
}

func NewCheckoutHandler(registry *cart.Registry, orderRepo *orders.Repository, catalogSvc *catalog.Service, events checkout.EventPublisher, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		registry: registry,
		orders:   orderRepo,
		catalog:  catalogSvc,
		events:   events,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	PaymentMethod string `json:"payment_method"`
}

type OrderLineDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type OrderResponseDTO struct {
	OrderID       string         `json:"order_id"`
	CreatedAt     time.Time      `json:"created_at"`
	Lines         []OrderLineDTO `json:"lines"`
	Subtotal      int64          `json:"subtotal"`
	Commission    int64          `json:"commission"`
	Total         int64          `json:"total"`
	PaymentMethod string         `json:"payment_method"`
	StockWarnings int            `json:"stock_warnings,omitempty"`
}

// Quote prices the current cart for a payment method without committing
// anything. The client calls this on every payment-method toggle.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method := orders.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", req.PaymentMethod)
		return
	}

	m, err := h.registry.Manager(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, checkout.Price(m.Snapshot(), method))
}

// Submit runs one settlement flow for the caller's cart.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	m, err := h.registry.Manager(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}

	flow := checkout.NewFlow(m, h.orders, h.catalog, identity.FromContext{}, h.events)
	result, err := flow.Submit(ctx, orders.PaymentMethod(req.PaymentMethod))
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, orderDTO(result))
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.Is(err, checkout.ErrInvalidPaymentMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
	case errors.Is(err, checkout.ErrNoIdentity):
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
	case errors.Is(err, checkout.ErrMissingEmail):
		respondError(w, http.StatusBadRequest, "missing_email", "signed-in identity has no email")
	default:
		respondError(w, http.StatusBadGateway, "order_commit_failed", err.Error())
	}
}

func orderDTO(result *checkout.Result) OrderResponseDTO {
	dto := historyOrderDTO(result.Order)
	dto.StockWarnings = len(result.StockFailures)
	return dto
}
