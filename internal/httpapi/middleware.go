// Package httpapi is the REST surface over the storefront core: cart,
// checkout, catalog, favorites, reviews and order history.
package httpapi

import (
	"net/http"

	"github.com/TON618OFF/FactorioStore-sub000/internal/identity"
)

// HeaderAuthMiddleware derives the caller's identity from trusted headers
// set by the edge proxy (replace with real JWT validation when the gateway
// terminates auth itself). Requests without a user id pass through
// anonymous; handlers enforce their own preconditions.
func HeaderAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get("X-User-ID")
		if uid == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := identity.WithIdentity(r.Context(), identity.Identity{
			UID:   uid,
			Email: r.Header.Get("X-User-Email"),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireIdentity pulls the signed-in identity or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	id, ok := identity.FromContext{}.Current(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return identity.Identity{}, false
	}
	return id, true
}
