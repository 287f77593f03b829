// internal/platform/di/mall/register.go
package mall

import (
	"encoding/json"
	"log/slog"
	"net/http"

	mallhttp "storefront/internal/adapters/in/http/mall"
	mallhandler "storefront/internal/adapters/in/http/mall/handler"
	"storefront/internal/adapters/in/http/middleware"
)

// notImplemented returns a non-nil handler for endpoints that are not wired.
func notImplemented(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotImplemented)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "not_implemented",
			"name":  name,
		})
	})
}

// requireUserAuth wraps handler with UserAuthMiddleware (fail-closed).
// If the middleware has no verifier it returns 503 so the bug is obvious.
func requireUserAuth(mw *middleware.UserAuthMiddleware, h http.Handler, name string) http.Handler {
	if h == nil {
		h = http.NotFoundHandler()
	}
	if mw == nil || mw.Verifier == nil {
		slog.Error("UserAuthMiddleware is not initialized; returning 503", "component", "mall.register", "endpoint", name)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "user_auth_not_initialized",
				"name":  name,
			})
		})
	}
	return mw.Handler(h)
}

// Register registers mall routes onto mux.
// Pure DI: construct handlers and pass them to the mall router.
func Register(mux *http.ServeMux, cont *Container) {
	if mux == nil || cont == nil {
		return
	}
	logger := cont.Log
	if logger == nil {
		logger = slog.Default()
	}

	// ------------------------------------------------------------
	// Auth middleware (buyer side)
	// ------------------------------------------------------------
	userAuthMW := &middleware.UserAuthMiddleware{Log: logger}
	if cont.Infra != nil && cont.Infra.FirebaseAuth != nil {
		// assign only a non-nil client so Verifier never holds a typed nil
		userAuthMW.Verifier = cont.Infra.FirebaseAuth
	} else {
		logger.Warn("firebase auth is nil; protected endpoints will return 503", "component", "mall.register")
	}

	// ----------------------------
	// Handlers (construct only)
	// ----------------------------
	catalogH := notImplemented("Catalog")
	userH := notImplemented("User")
	cartH := notImplemented("Cart")

	if cont.CatalogQ != nil {
		catalogH = mallhandler.NewCatalogHandler(cont.CatalogQ, logger)
	}
	if cont.UserUC != nil {
		userH = mallhandler.NewUserHandler(cont.UserUC, logger)
	}
	if cont.CartUC != nil {
		cartH = mallhandler.NewCartHandler(cont.CartUC, logger)
	}

	mallhttp.Register(mux, mallhttp.Deps{
		Catalog: catalogH,
		SignUp:  userH,
		Profile: requireUserAuth(userAuthMW, userH, "Profile"),
		Cart:    requireUserAuth(userAuthMW, cartH, "Cart"),
	})
	logger.Info("mall routes registered", "component", "boot")
}
