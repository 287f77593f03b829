// internal/adapters/in/http/mall/handler/cart_handler.go
package mallHandler

import (
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
)

// CartHandler serves the signed-in user's cart.
//
// Routes (behind UserAuthMiddleware):
// - GET    /mall/me/cart
// - PUT    /mall/me/cart                    (replace all; optional version / If-Match)
// - DELETE /mall/me/cart                    (clear)
// - POST   /mall/me/cart/items              (add item)
// - PUT    /mall/me/cart/items/{productId}  (set quantity)
// - DELETE /mall/me/cart/items/{productId}  (remove line)
type CartHandler struct {
	uc  *usecase.CartUsecase
	log *slog.Logger
}

func NewCartHandler(uc *usecase.CartUsecase, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{uc: uc, log: logger.With("component", "mall_cart_handler")}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.uc == nil {
		internalError(w, "cart handler is not configured")
		return
	}

	// the session is explicit: no session, no cart
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := sess.UserID

	path := normalizePath(r.URL.Path)

	switch {
	case path == "/mall/me/cart":
		switch r.Method {
		case http.MethodGet:
			h.respond(w, r, userID, "get")(h.uc.Fetch(r.Context(), userID))
		case http.MethodPut:
			h.handleReplace(w, r, userID)
		case http.MethodDelete:
			h.respond(w, r, userID, "clear")(h.uc.Clear(r.Context(), userID))
		default:
			methodNotAllowed(w)
		}
		return

	case path == "/mall/me/cart/items":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.handleAddItem(w, r, userID)
		return

	case strings.HasPrefix(path, "/mall/me/cart/items/"):
		productID, ok := segmentAfter(path, "/mall/me/cart/items/")
		if !ok {
			notFound(w)
			return
		}
		switch r.Method {
		case http.MethodPut:
			h.handleSetQty(w, r, userID, productID)
		case http.MethodDelete:
			h.respond(w, r, userID, "remove")(h.uc.Remove(r.Context(), userID, productID))
		default:
			methodNotAllowed(w)
		}
		return
	}

	notFound(w)
}

// -------------------------
// handlers (mutations)
// -------------------------

func (h *CartHandler) handleReplace(w http.ResponseWriter, r *http.Request, userID string) {
	var req replaceCartReq
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid json body")
		return
	}

	lines := make([]cartdom.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, cartdom.CartLine{
			ProductID: strings.TrimSpace(it.ProductID),
			Name:      strings.TrimSpace(it.Name),
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImageURL:  strings.TrimSpace(it.ImageURL),
		})
	}

	version, conditional := req.expectedVersion(r)
	if conditional {
		h.respond(w, r, userID, "replace")(h.uc.ReplaceAllIfVersion(r.Context(), userID, lines, version))
		return
	}
	h.respond(w, r, userID, "replace")(h.uc.ReplaceAll(r.Context(), userID, lines))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request, userID string) {
	var req addItemReq
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" || req.Quantity <= 0 {
		badRequest(w, "productId and quantity(>=1) are required")
		return
	}
	h.respond(w, r, userID, "add")(h.uc.AddItem(r.Context(), userID, productID, req.Quantity))
}

func (h *CartHandler) handleSetQty(w http.ResponseWriter, r *http.Request, userID, productID string) {
	var req setQtyReq
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if req.Quantity == nil {
		badRequest(w, "quantity is required")
		return
	}
	h.respond(w, r, userID, "set_qty")(h.uc.UpdateQuantity(r.Context(), userID, productID, *req.Quantity))
}

// respond writes the refreshed cart or maps the error.
func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, userID, op string) func(*cartdom.Cart, error) {
	return func(c *cartdom.Cart, err error) {
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				h.log.ErrorContext(r.Context(), "cart operation failed", "op", op, "uid", maskUID(userID), "err", err)
			} else {
				h.log.InfoContext(r.Context(), "cart operation rejected", "op", op, "uid", maskUID(userID), "status", status, "err", err)
			}
			writeUsecaseErr(w, err)
			return
		}
		if c == nil {
			c = cartdom.Empty(userID)
		}
		writeJSON(w, http.StatusOK, toCartResponse(c))
	}
}

// -------------------------
// DTOs
// -------------------------

type cartLineReq struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl"`
}

type replaceCartReq struct {
	Items   []cartLineReq `json:"items"`
	Version *int64        `json:"version,omitempty"`
}

// expectedVersion prefers the body over the If-Match header.
func (req replaceCartReq) expectedVersion(r *http.Request) (int64, bool) {
	if req.Version != nil && *req.Version >= 0 {
		return *req.Version, true
	}
	return parseVersion(r.Header.Get("If-Match"))
}

type addItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type setQtyReq struct {
	Quantity *int `json:"quantity"`
}

type cartLineResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl"`
	Subtotal  string  `json:"subtotal"`
}

type cartResponse struct {
	UserID    string             `json:"userId"`
	Items     []cartLineResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	Total     string             `json:"total"`
	Version   int64              `json:"version"`
	CreatedAt string             `json:"createdAt,omitempty"`
	UpdatedAt string             `json:"updatedAt,omitempty"`
}

func toCartResponse(c *cartdom.Cart) cartResponse {
	items := make([]cartLineResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, cartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			ImageURL:  l.ImageURL,
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}
	return cartResponse{
		UserID:    c.UserID,
		Items:     items,
		ItemCount: c.ItemCount(),
		Total:     c.Total().StringFixed(2),
		Version:   c.Version,
		CreatedAt: toRFC3339(c.CreatedAt),
		UpdatedAt: toRFC3339(c.UpdatedAt),
	}
}
