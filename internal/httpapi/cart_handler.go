package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/cart"
	"github.com/TON618OFF/FactorioStore-sub000/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	registry *cart.Registry
	catalog  *catalog.Service
	timeout  time.Duration
}

func NewCartHandler(registry *cart.Registry, catalogSvc *catalog.Service, timeout time.Duration) *CartHandler {
	return &CartHandler{
		registry: registry,
		catalog:  catalogSvc,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartLineDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
	Subtotal  int64  `json:"subtotal"`
}

type CartResponseDTO struct {
	Lines    []CartLineDTO `json:"lines"`
	Subtotal int64         `json:"subtotal"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	m, err := h.registry.Manager(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cartDTO(m.Snapshot()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	// Name, price and image come from the catalog, never from the client.
	product, err := h.catalog.Get(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", req.ProductID)
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}

	m, err := h.registry.Manager(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}

	errAdd := m.AddLine(ctx, cart.Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  req.Quantity,
		ImageRef:  product.ImageRef,
	})
	if errAdd != nil {
		// The mirror already holds the optimistic value; report the remote
		// failure and still show the cart as the user sees it.
		respondError(w, http.StatusBadGateway, "remote_write_failed", errAdd.Error())
		return
	}
	respondJSON(w, http.StatusCreated, cartDTO(m.Snapshot()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	m, err := h.registry.Manager(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}

	if err := m.SetQuantity(ctx, chi.URLParam(r, "productID"), req.Quantity); err != nil {
		respondError(w, http.StatusBadGateway, "remote_write_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cartDTO(m.Snapshot()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	m, err := h.registry.Manager(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}

	if err := m.SetQuantity(ctx, chi.URLParam(r, "productID"), 0); err != nil {
		respondError(w, http.StatusBadGateway, "remote_write_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cartDTO(m.Snapshot()))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	m, err := h.registry.Manager(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", err.Error())
		return
	}

	if err := m.Clear(ctx); err != nil {
		respondError(w, http.StatusBadGateway, "remote_write_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cartDTO(m.Snapshot()))
}

func cartDTO(lines []cart.Line) CartResponseDTO {
	out := CartResponseDTO{Lines: make([]CartLineDTO, 0, len(lines))}
	for _, l := range lines {
		out.Lines = append(out.Lines, CartLineDTO{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Image:     l.ImageRef,
			Subtotal:  l.Subtotal(),
		})
		out.Subtotal += l.Subtotal()
	}
	return out
}
