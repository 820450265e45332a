package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/favorites"
	"github.com/go-chi/chi/v5"
)

type FavoritesHandler struct {
	favorites *favorites.Repository
	timeout   time.Duration
}

func NewFavoritesHandler(repo *favorites.Repository, timeout time.Duration) *FavoritesHandler {
	return &FavoritesHandler{favorites: repo, timeout: timeout}
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	items, err := h.favorites.List(ctx, who.UID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "favorites_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.favorites.Add(ctx, who.UID, productID); err != nil {
		respondError(w, http.StatusBadGateway, "favorites_unavailable", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.favorites.Remove(ctx, who.UID, productID); err != nil {
		respondError(w, http.StatusBadGateway, "favorites_unavailable", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
