package mallHandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/adapters/out/docstore"
	mallquery "storefront/internal/application/query/mall"
	usecase "storefront/internal/application/usecase"
	"storefront/internal/domain/session"
)

type cartBody struct {
	UserID string `json:"userId"`
	Items  []struct {
		ProductID string `json:"productId"`
		Name      string `json:"name"`
		Quantity  int    `json:"quantity"`
		Subtotal  string `json:"subtotal"`
	} `json:"items"`
	ItemCount int    `json:"itemCount"`
	Total     string `json:"total"`
	Version   int64  `json:"version"`
}

func newCartHandler(t *testing.T) http.Handler {
	t.Helper()
	store := seededCatalog()
	catalog := mallquery.NewCatalogQuery(store, mallquery.DefaultCollections(), quietLogger())
	uc := usecase.NewCartUsecase(docstore.NewCartRepository(store, "carts"), catalog)
	return NewCartHandler(uc, quietLogger())
}

func cartRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, cartBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	s, err := session.New("uid-1", "asha@example.com", "Asha")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	req = req.WithContext(middleware.WithSession(req.Context(), s))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out cartBody
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v body=%s", err, rec.Body.String())
		}
	}
	return rec, out
}

func TestCartHandler_Flow(t *testing.T) {
	h := newCartHandler(t)

	rec, c := cartRequest(t, h, http.MethodGet, "/mall/me/cart", "")
	if rec.Code != http.StatusOK || len(c.Items) != 0 || c.Version != 0 || c.Total != "0.00" {
		t.Fatalf("empty cart: status=%d body=%+v", rec.Code, c)
	}

	rec, c = cartRequest(t, h, http.MethodPost, "/mall/me/cart/items", `{"productId":"p1","quantity":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(c.Items) != 1 || c.Items[0].Name != "Rice" || c.Total != "100.00" || c.UserID != "uid-1" {
		t.Fatalf("after add: %+v", c)
	}

	rec, c = cartRequest(t, h, http.MethodPut, "/mall/me/cart/items/p2", `{"quantity":1}`)
	if rec.Code != http.StatusOK || c.ItemCount != 3 || c.Total != "180.00" {
		t.Fatalf("set qty: status=%d body=%+v", rec.Code, c)
	}

	rec, c = cartRequest(t, h, http.MethodDelete, "/mall/me/cart/items/p1", "")
	if rec.Code != http.StatusOK || len(c.Items) != 1 || c.Items[0].ProductID != "p2" {
		t.Fatalf("remove: status=%d body=%+v", rec.Code, c)
	}

	rec, c = cartRequest(t, h, http.MethodDelete, "/mall/me/cart", "")
	if rec.Code != http.StatusOK || len(c.Items) != 0 || c.Version == 0 {
		t.Fatalf("clear: status=%d body=%+v", rec.Code, c)
	}
}

func TestCartHandler_Replace(t *testing.T) {
	h := newCartHandler(t)

	t.Run("unconditional replace", func(t *testing.T) {
		rec, c := cartRequest(t, h, http.MethodPut, "/mall/me/cart",
			`{"items":[{"productId":"p1","name":"Rice","price":50,"quantity":1},{"productId":"p1","name":"Rice","price":50,"quantity":2}]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
		}
		if len(c.Items) != 1 || c.Items[0].Quantity != 3 || c.Items[0].Subtotal != "150.00" {
			t.Fatalf("merged lines = %+v", c.Items)
		}
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		rec, _ := cartRequest(t, h, http.MethodPut, "/mall/me/cart", `{"items":[],"version":0}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("negative quantity is a bad request", func(t *testing.T) {
		rec, _ := cartRequest(t, h, http.MethodPut, "/mall/me/cart", `{"items":[{"productId":"p1","price":50,"quantity":-1}]}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
		}
	})
}

func TestCartHandler_Errors(t *testing.T) {
	h := newCartHandler(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown product", http.MethodPost, "/mall/me/cart/items", `{"productId":"ghost","quantity":1}`, http.StatusNotFound},
		{"missing quantity", http.MethodPut, "/mall/me/cart/items/p1", `{}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/mall/me/cart/items", `{`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/mall/me/cart/items", `{"productId":"p1","quantity":1,"x":1}`, http.StatusBadRequest},
		{"method", http.MethodPatch, "/mall/me/cart", ``, http.StatusMethodNotAllowed},
		{"path", http.MethodGet, "/mall/me/cart/other", ``, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := cartRequest(t, h, tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestCartHandler_RequiresSession(t *testing.T) {
	h := newCartHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mall/me/cart", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}
