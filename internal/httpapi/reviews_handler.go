package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/TON618OFF/FactorioStore-sub000/internal/reviews"
	"github.com/go-chi/chi/v5"
)

type ReviewsHandler struct {
	reviews *reviews.Repository
	timeout time.Duration
}

func NewReviewsHandler(repo *reviews.Repository, timeout time.Duration) *ReviewsHandler {
	return &ReviewsHandler{reviews: repo, timeout: timeout}
}

type addReviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

type reviewListResponse struct {
	Reviews []reviews.Review `json:"reviews"`
	Average float64          `json:"average"`
}

func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "productID")
	items, avg, err := h.reviews.ListByProduct(ctx, productID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "reviews_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, reviewListResponse{Reviews: items, Average: avg})
}

func (h *ReviewsHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req addReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	productID := chi.URLParam(r, "productID")
	review, err := h.reviews.Add(ctx, productID, reviews.Review{
		UserID: who.UID,
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		if errors.Is(err, reviews.ErrInvalidRating) {
			respondError(w, http.StatusBadRequest, "invalid_rating", err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, "reviews_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, review)
}
