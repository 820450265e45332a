package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	catalog *catalog.Service
	timeout time.Duration
}

func NewProductHandler(catalogSvc *catalog.Service, timeout time.Duration) *ProductHandler {
	return &ProductHandler{catalog: catalogSvc, timeout: timeout}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "productID")
	product, err := h.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", id)
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Upsert is the admin back-office write path.
func (h *ProductHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	var product catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	product.ID = chi.URLParam(r, "productID")
	if product.Price < 0 || product.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_product", "price and quantity must not be negative")
		return
	}

	if err := h.catalog.Upsert(ctx, product); err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	id := chi.URLParam(r, "productID")
	if err := h.catalog.Delete(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", id)
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
