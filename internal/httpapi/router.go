package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Cart      *CartHandler
	Checkout  *CheckoutHandler
	Products  *ProductHandler
	Orders    *OrdersHandler
	Favorites *FavoritesHandler
	Reviews   *ReviewsHandler
}

func NewRouter(h Handlers, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(HeaderAuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{productID}", h.Cart.UpdateQuantity)
			r.Delete("/items/{productID}", h.Cart.RemoveItem)
			r.Delete("/", h.Cart.Clear)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", h.Checkout.Quote)
			r.Post("/submit", h.Checkout.Submit)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/{productID}", h.Products.Get)
			r.Put("/{productID}", h.Products.Upsert)
			r.Delete("/{productID}", h.Products.Delete)

			r.Get("/{productID}/reviews", h.Reviews.List)
			r.Post("/{productID}/reviews", h.Reviews.Add)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.List)
			r.Get("/{orderID}", h.Orders.Get)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.Favorites.List)
			r.Put("/{productID}", h.Favorites.Add)
			r.Delete("/{productID}", h.Favorites.Remove)
		})
	})

	return r
}
