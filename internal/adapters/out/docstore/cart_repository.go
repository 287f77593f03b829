// internal/adapters/out/docstore/cart_repository.go
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/document"
)

// CartRepository implements cart.Repository on a document.Store.
//
// Collection design:
// - collection: carts (configurable)
// - docId: userId (docId is the source of truth)
// - fields: userId, items(map productId -> line), version, createdAt, updatedAt
//
// Every write bumps version; conditional writes compare it.
type CartRepository struct {
	Store      document.Store
	Collection string
	now        func() time.Time
}

func NewCartRepository(store document.Store, collection string) *CartRepository {
	if strings.TrimSpace(collection) == "" {
		collection = "carts"
	}
	return &CartRepository{
		Store:      store,
		Collection: collection,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ cartdom.Repository = (*CartRepository)(nil)

const (
	fieldItems     = "items"
	fieldVersion   = "version"
	fieldUpdatedAt = "updatedAt"
)

var (
	errNilStore    = errors.New("cart_repository: store is nil")
	errEmptyUserID = errors.New("cart_repository: userID is empty")
)

// GetByUserID returns (nil, nil) if not found (nil policy).
func (r *CartRepository) GetByUserID(ctx context.Context, userID string) (*cartdom.Cart, error) {
	if r == nil || r.Store == nil {
		return nil, errNilStore
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errEmptyUserID
	}

	d, err := r.Store.Get(ctx, r.Collection, uid)
	if errors.Is(err, document.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c := cartFromData(d.Data)
	c.UserID = uid
	if c.CreatedAt.IsZero() {
		c.CreatedAt = d.CreateTime
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = d.UpdateTime
	}
	return c, nil
}

// Upsert overwrites the full document.
func (r *CartRepository) Upsert(ctx context.Context, c *cartdom.Cart) error {
	return r.set(ctx, c, nil)
}

func (r *CartRepository) UpsertIfVersion(ctx context.Context, c *cartdom.Cart, expected int64) error {
	return r.set(ctx, c, []document.Condition{document.IfVersion(fieldVersion, expected)})
}

func (r *CartRepository) set(ctx context.Context, c *cartdom.Cart, conds []document.Condition) error {
	if r == nil || r.Store == nil {
		return errNilStore
	}
	if c == nil {
		return errors.New("cart_repository: cart is nil")
	}
	uid := strings.TrimSpace(c.UserID)
	if uid == "" {
		return errEmptyUserID
	}

	data := cartToData(c, r.now())
	err := r.Store.Set(ctx, r.Collection, uid, data, conds...)
	if errors.Is(err, document.ErrConflict) {
		return fmt.Errorf("%w: %v", cartdom.ErrVersionConflict, err)
	}
	return err
}

// RemoveLine deletes items.<productId> only. Missing cart is a no-op.
func (r *CartRepository) RemoveLine(ctx context.Context, userID, productID string) error {
	if r == nil || r.Store == nil {
		return errNilStore
	}
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" {
		return errEmptyUserID
	}
	if pid == "" {
		return cartdom.ErrInvalidCart
	}

	err := r.Store.Update(ctx, r.Collection, uid, []document.FieldUpdate{
		document.DeleteField(fieldItems, pid),
		document.Increment(1, fieldVersion),
		document.Set(r.now(), fieldUpdatedAt),
	})
	if errors.Is(err, document.ErrNotFound) {
		return nil
	}
	return err
}

// Clear empties items and bumps version.
// A missing doc is created empty (idempotent).
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	if r == nil || r.Store == nil {
		return errNilStore
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return errEmptyUserID
	}
	now := r.now()
	clearItems := []document.FieldUpdate{
		document.Set(map[string]any{}, fieldItems),
		document.Increment(1, fieldVersion),
		document.Set(now, fieldUpdatedAt),
	}

	// try update first
	err := r.Store.Update(ctx, r.Collection, uid, clearItems)
	if err == nil {
		return nil
	}
	if !errors.Is(err, document.ErrNotFound) {
		return err
	}

	_, err = r.Store.Create(ctx, r.Collection, uid, map[string]any{
		"userId":       uid,
		fieldItems:     map[string]any{},
		fieldVersion:   int64(1),
		"createdAt":    now,
		fieldUpdatedAt: now,
	})
	if errors.Is(err, document.ErrAlreadyExists) {
		// created concurrently
		return r.Store.Update(ctx, r.Collection, uid, clearItems)
	}
	return err
}

// -----------------------------------------
// mapping
// -----------------------------------------

func cartToData(c *cartdom.Cart, now time.Time) map[string]any {
	items := make(map[string]any, len(c.Lines))
	for _, l := range c.Lines {
		pid := strings.TrimSpace(l.ProductID)
		if pid == "" || l.Quantity <= 0 {
			continue
		}
		items[pid] = map[string]any{
			"productId": pid,
			"name":      l.Name,
			"price":     l.Price,
			"quantity":  int64(l.Quantity),
			"imageUrl":  l.ImageURL,
		}
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	return map[string]any{
		"userId":       strings.TrimSpace(c.UserID),
		fieldItems:     items,
		fieldVersion:   c.Version + 1,
		"createdAt":    createdAt.UTC(),
		fieldUpdatedAt: updatedAt.UTC(),
	}
}

// cartFromData parses stored data with backward compatibility.
//
// Supported item shapes:
// 1) items: map[productId] = {productId, name, price, quantity, imageUrl}
// 2) items: [ {productId, name, price, quantity, imageUrl}, ... ] (legacy list)
func cartFromData(raw map[string]any) *cartdom.Cart {
	c := &cartdom.Cart{Lines: []cartdom.CartLine{}}
	if raw == nil {
		return c
	}

	c.Version = asInt64(raw[fieldVersion])
	if t, ok := asTime(raw["createdAt"]); ok {
		c.CreatedAt = t
	}
	if t, ok := asTime(raw[fieldUpdatedAt]); ok {
		c.UpdatedAt = t
	}

	var lines []cartdom.CartLine
	switch items := raw[fieldItems].(type) {
	case map[string]any:
		for k, v := range items {
			mv, ok := v.(map[string]any)
			if !ok {
				continue
			}
			l := lineFromData(mv)
			if strings.TrimSpace(l.ProductID) == "" {
				l.ProductID = k
			}
			lines = append(lines, l)
		}
	case []any:
		for _, v := range items {
			if mv, ok := v.(map[string]any); ok {
				lines = append(lines, lineFromData(mv))
			}
		}
	}

	// drop unusable lines instead of failing the whole read
	usable := make([]cartdom.CartLine, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" || l.Quantity <= 0 || l.Price < 0 {
			continue
		}
		usable = append(usable, l)
	}

	normalized, err := cartdom.NewCart("doc", usable, time.Time{})
	if err == nil {
		c.Lines = normalized.Lines
	}
	return c
}

func lineFromData(m map[string]any) cartdom.CartLine {
	return cartdom.CartLine{
		ProductID: strings.TrimSpace(asString(m["productId"])),
		Name:      strings.TrimSpace(asString(m["name"])),
		Price:     asFloat(m["price"]),
		Quantity:  asInt(m["quantity"]),
		ImageURL:  strings.TrimSpace(asString(m["imageUrl"])),
	}
}
