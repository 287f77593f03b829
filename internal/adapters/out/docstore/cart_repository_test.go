package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/adapters/out/memory"
	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/document"
)

func newCartRepo() (*CartRepository, *memory.DocumentStore) {
	store := memory.NewDocumentStore()
	repo := NewCartRepository(store, "carts")
	repo.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	return repo, store
}

func TestCartRepository_GetMissing(t *testing.T) {
	repo, _ := newCartRepo()
	c, err := repo.GetByUserID(context.Background(), "u1")
	if err != nil || c != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", c, err)
	}
	if _, err := repo.GetByUserID(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestCartRepository_UpsertAndRead(t *testing.T) {
	ctx := context.Background()
	repo, _ := newCartRepo()

	c, _ := cartdom.NewCart("u1", []cartdom.CartLine{
		{ProductID: "p2", Name: "Milk", Price: 1.25, Quantity: 2, ImageURL: "m.png"},
		{ProductID: "p1", Name: "Rice", Price: 3, Quantity: 1},
	}, time.Time{})

	if err := repo.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := repo.GetByUserID(ctx, "u1")
	if err != nil || got == nil {
		t.Fatalf("GetByUserID: %v %v", got, err)
	}
	if got.Version != 1 {
		t.Fatalf("version = %d, want 1", got.Version)
	}
	if len(got.Lines) != 2 || got.Lines[0].ProductID != "p1" || got.Lines[1].ImageURL != "m.png" {
		t.Fatalf("lines = %+v", got.Lines)
	}
	if got.Total().String() != "5.5" {
		t.Fatalf("total = %s", got.Total())
	}
}

func TestCartRepository_UpsertIfVersion(t *testing.T) {
	ctx := context.Background()
	repo, _ := newCartRepo()
	c := cartdom.Empty("u1")
	_ = c.Add("p1", 1, cartdom.CartLine{Price: 1}, time.Time{})

	if err := repo.UpsertIfVersion(ctx, c, 0); err != nil {
		t.Fatalf("first write: %v", err)
	}
	// stale writer still believes version 0
	if err := repo.UpsertIfVersion(ctx, c, 0); !errors.Is(err, cartdom.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestCartRepository_RemoveLine(t *testing.T) {
	ctx := context.Background()
	repo, _ := newCartRepo()

	// missing cart: no-op
	if err := repo.RemoveLine(ctx, "u1", "p1"); err != nil {
		t.Fatalf("RemoveLine on missing cart: %v", err)
	}

	c, _ := cartdom.NewCart("u1", []cartdom.CartLine{
		{ProductID: "p1", Price: 1, Quantity: 1},
		{ProductID: "p2", Price: 2, Quantity: 1},
	}, time.Time{})
	_ = repo.Upsert(ctx, c)

	if err := repo.RemoveLine(ctx, "u1", "p1"); err != nil {
		t.Fatalf("RemoveLine: %v", err)
	}
	if err := repo.RemoveLine(ctx, "u1", "absent"); err != nil {
		t.Fatalf("RemoveLine absent line: %v", err)
	}
	got, _ := repo.GetByUserID(ctx, "u1")
	if len(got.Lines) != 1 || got.Lines[0].ProductID != "p2" {
		t.Fatalf("lines = %+v", got.Lines)
	}
	if got.Version != 3 {
		t.Fatalf("version = %d, want 3", got.Version)
	}
}

func TestCartRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo, store := newCartRepo()

	if err := repo.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear on missing cart: %v", err)
	}
	d, err := store.Get(ctx, "carts", "u1")
	if err != nil {
		t.Fatalf("document not created: %v", err)
	}
	if items, _ := d.Data["items"].(map[string]any); len(items) != 0 {
		t.Fatalf("items = %v", items)
	}

	c, _ := cartdom.NewCart("u1", []cartdom.CartLine{{ProductID: "p1", Price: 1, Quantity: 4}}, time.Time{})
	c.Version = 1
	_ = repo.Upsert(ctx, c)

	if err := repo.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := repo.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear twice: %v", err)
	}
	got, _ := repo.GetByUserID(ctx, "u1")
	if got == nil || !got.IsEmpty() {
		t.Fatalf("cart not empty: %+v", got)
	}
}

func TestCartFromData_LegacyAndDirty(t *testing.T) {
	c := cartFromData(map[string]any{
		"version": float64(7),
		"items": []any{
			map[string]any{"productId": "p1", "name": "A", "price": "2.50", "quantity": "2"},
			map[string]any{"productId": "p1", "quantity": int64(1)},
			map[string]any{"productId": "", "quantity": int64(1)},
			map[string]any{"productId": "p3", "quantity": int64(0)},
			"garbage",
		},
	})
	if c.Version != 7 {
		t.Fatalf("version = %d", c.Version)
	}
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 3 || c.Lines[0].Price != 2.5 {
		t.Fatalf("lines = %+v", c.Lines)
	}

	m := cartFromData(map[string]any{
		"items": map[string]any{"k1": map[string]any{"quantity": 2, "price": 1}},
	})
	if len(m.Lines) != 1 || m.Lines[0].ProductID != "k1" {
		t.Fatalf("map key should fill productId: %+v", m.Lines)
	}
}

type failingStore struct {
	document.Store
	err error
}

func (f failingStore) Get(context.Context, string, string) (document.Document, error) {
	return document.Document{}, f.err
}

func TestCartRepository_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("unavailable")
	repo := NewCartRepository(failingStore{err: boom}, "")
	if _, err := repo.GetByUserID(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
