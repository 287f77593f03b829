// internal/adapters/in/http/mall/handler/catalog_handler.go
package mallHandler

import (
	"log/slog"
	"net/http"
	"strings"

	mallquery "storefront/internal/application/query/mall"
	catdom "storefront/internal/domain/catalog"
)

// CatalogHandler serves buyer-facing catalog endpoints (public).
//
// Routes:
// - GET /mall/products/featured
// - GET /mall/products/of-the-day
// - GET /mall/products/{id}
// - GET /mall/categories
// - GET /mall/categories/top
// - GET /mall/categories/{id}/products
type CatalogHandler struct {
	Q   *mallquery.CatalogQuery
	log *slog.Logger
}

func NewCatalogHandler(q *mallquery.CatalogQuery, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{Q: q, log: logger.With("component", "mall_catalog_handler")}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Q == nil {
		internalError(w, "catalog handler is not ready")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	path := normalizePath(r.URL.Path)

	switch {
	// fixed subroutes MUST be checked before /mall/products/{id}
	case path == "/mall/products/featured":
		writeJSON(w, http.StatusOK, map[string]any{"products": nonNilProducts(h.Q.FetchFeatured(r.Context()))})
		return

	case path == "/mall/products/of-the-day":
		writeJSON(w, http.StatusOK, h.Q.FetchProductOfTheDay(r.Context()))
		return

	case strings.HasPrefix(path, "/mall/products/"):
		id, ok := segmentAfter(path, "/mall/products/")
		if !ok {
			notFound(w)
			return
		}
		h.getProduct(w, r, id)
		return

	case path == "/mall/categories":
		cats := h.Q.FetchCategories(r.Context())
		if cats == nil {
			cats = []catdom.Category{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
		return

	case path == "/mall/categories/top":
		writeJSON(w, http.StatusOK, h.Q.FetchTopCategories(r.Context()))
		return

	case strings.HasPrefix(path, "/mall/categories/") && strings.HasSuffix(path, "/products"):
		id, ok := segmentAfter(strings.TrimSuffix(path, "/products"), "/mall/categories/")
		if !ok {
			notFound(w)
			return
		}
		products, err := h.Q.FetchByCategory(r.Context(), id)
		if err != nil {
			writeUsecaseErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": nonNilProducts(products)})
		return
	}

	notFound(w)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request, id string) {
	res, err := h.Q.FetchByID(r.Context(), id)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}

	switch res.Status {
	case catdom.LookupFound:
		writeJSON(w, http.StatusOK, res.Product)
	case catdom.LookupNotFound:
		notFound(w)
	default:
		// buyer-facing: a store failure is not the product's absence
		h.log.WarnContext(r.Context(), "product lookup failed", "productId", id, "err", res.Err)
		writeErr(w, http.StatusBadGateway, "product lookup failed")
	}
}

func nonNilProducts(in []catdom.Product) []catdom.Product {
	if in == nil {
		return []catdom.Product{}
	}
	return in
}
