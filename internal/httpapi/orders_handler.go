package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/docstore"
	"github.com/TON618OFF/FactorioStore-sub000/internal/orders"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	orders  *orders.Repository
	timeout time.Duration
}

func NewOrdersHandler(repo *orders.Repository, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: repo, timeout: timeout}
}

// List returns the caller's order history, newest first.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	history, err := h.orders.ListByUser(ctx, who.UID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "orders_unavailable", err.Error())
		return
	}

	out := make([]OrderResponseDTO, len(history))
	for i, o := range history {
		out[i] = historyOrderDTO(o)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "orderID")
	order, err := h.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			respondError(w, http.StatusNotFound, "order_not_found", id)
			return
		}
		respondError(w, http.StatusBadGateway, "orders_unavailable", err.Error())
		return
	}
	// Orders are private to the buyer.
	if order.UserID != who.UID {
		respondError(w, http.StatusNotFound, "order_not_found", id)
		return
	}
	respondJSON(w, http.StatusOK, historyOrderDTO(order))
}

func historyOrderDTO(o orders.Order) OrderResponseDTO {
	lines := make([]OrderLineDTO, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		}
	}
	return OrderResponseDTO{
		OrderID:       o.ID,
		CreatedAt:     o.CreatedAt,
		Lines:         lines,
		Subtotal:      o.Subtotal,
		Commission:    o.Commission,
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
	}
}
