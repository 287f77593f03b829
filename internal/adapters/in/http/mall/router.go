// internal/adapters/in/http/mall/router.go
package mall

import (
	"log/slog"
	"net/http"
)

// Deps is the buyer-facing (mall) handler set.
// Authenticated handlers arrive already wrapped by UserAuthMiddleware.
type Deps struct {
	Catalog http.Handler

	// public
	SignUp http.Handler

	// authenticated
	Profile http.Handler
	Cart    http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead so boot never fails on a missing handler.
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		slog.Warn("nil handler, registering NotFoundHandler", "component", "mall.router", "handler", name, "pattern", pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers buyer-facing routes onto mux (mall only).
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	// catalog (products + categories share one handler)
	handleSafe(mux, "/mall/products", deps.Catalog, "Catalog")
	handleSafe(mux, "/mall/products/", deps.Catalog, "Catalog")
	handleSafe(mux, "/mall/categories", deps.Catalog, "Catalog")
	handleSafe(mux, "/mall/categories/", deps.Catalog, "Catalog")

	// sign-up
	handleSafe(mux, "/mall/signup", deps.SignUp, "SignUp")

	// me
	handleSafe(mux, "/mall/me/profile", deps.Profile, "Profile(me)")
	handleSafe(mux, "/mall/me/cart", deps.Cart, "Cart(me)")
	handleSafe(mux, "/mall/me/cart/", deps.Cart, "Cart(me)")
}
