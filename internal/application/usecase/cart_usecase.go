// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
	catdom "storefront/internal/domain/catalog"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
	ErrCartConflict        = errors.New("cart_usecase: cart was modified concurrently")
	ErrCartProductNotFound = errors.New("cart_usecase: product not found")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// ProductLookup is the catalog read used to snapshot new cart lines.
type ProductLookup interface {
	FetchByID(ctx context.Context, id string) (catdom.ProductLookup, error)
}

// CartUsecase coordinates cart operations.
//
// Every mutation is followed by a fresh read, and the returned cart is what
// the store holds afterwards. Mutation errors are returned as-is; nothing
// is retried.
type CartUsecase struct {
	repo     cartdom.Repository
	products ProductLookup
	clock    Clock
}

func NewCartUsecase(repo cartdom.Repository, products ProductLookup) *CartUsecase {
	return &CartUsecase{
		repo:     repo,
		products: products,
		clock:    systemClock{},
	}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(repo cartdom.Repository, products ProductLookup, clock Clock) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartUsecase{repo: repo, products: products, clock: clock}
}

// Fetch returns the user's cart. A user without a cart document gets an
// empty cart (version 0).
func (uc *CartUsecase) Fetch(ctx context.Context, userID string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.repo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return cartdom.Empty(uid), nil
	}
	return c, nil
}

// ReplaceAll overwrites the line set (last writer wins).
func (uc *CartUsecase) ReplaceAll(ctx context.Context, userID string, lines []cartdom.CartLine) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	next, err := cartdom.NewCart(uid, lines, uc.clock.Now())
	if err != nil {
		return nil, invalid(err)
	}

	cur, err := uc.repo.GetByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if cur != nil {
		next.Version = cur.Version
		next.CreatedAt = cur.CreatedAt
	}

	if err := uc.repo.Upsert(ctx, next); err != nil {
		return nil, err
	}
	return uc.Fetch(ctx, uid)
}

// ReplaceAllIfVersion overwrites the line set only when the stored cart is
// still at version.
func (uc *CartUsecase) ReplaceAllIfVersion(ctx context.Context, userID string, lines []cartdom.CartLine, version int64) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" || version < 0 {
		return nil, ErrCartInvalidArgument
	}

	next, err := cartdom.NewCart(uid, lines, uc.clock.Now())
	if err != nil {
		return nil, invalid(err)
	}
	next.Version = version

	if err := uc.write(ctx, next, version); err != nil {
		return nil, err
	}
	return uc.Fetch(ctx, uid)
}

// Remove deletes one line and leaves the rest untouched.
func (uc *CartUsecase) Remove(ctx context.Context, userID, productID string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" {
		return nil, ErrCartInvalidArgument
	}

	if err := uc.repo.RemoveLine(ctx, uid, pid); err != nil {
		return nil, err
	}
	return uc.Fetch(ctx, uid)
}

// Clear empties the cart. The cart document itself is kept.
func (uc *CartUsecase) Clear(ctx context.Context, userID string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartInvalidArgument
	}

	if err := uc.repo.Clear(ctx, uid); err != nil {
		return nil, err
	}
	return uc.Fetch(ctx, uid)
}

// UpdateQuantity sets the quantity of productID.
//   - qty == 0 removes the line (same as Remove)
//   - qty < 0 is rejected
//   - a product not yet in the cart becomes a new line
//
// The write is conditional on the version that was read, so a concurrent
// change yields ErrCartConflict instead of being overwritten.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" || qty < 0 {
		return nil, ErrCartInvalidArgument
	}
	if qty == 0 {
		return uc.Remove(ctx, uid, pid)
	}

	c, err := uc.Fetch(ctx, uid)
	if err != nil {
		return nil, err
	}
	expected := c.Version

	var snapshot cartdom.CartLine
	if _, ok := c.Line(pid); !ok {
		snapshot, err = uc.snapshot(ctx, pid)
		if err != nil {
			return nil, err
		}
	}

	if err := c.SetQuantity(pid, qty, snapshot, uc.clock.Now()); err != nil {
		return nil, invalid(err)
	}
	if err := uc.write(ctx, c, expected); err != nil {
		return nil, err
	}
	return uc.Fetch(ctx, uid)
}

// AddItem increases the quantity of productID by qty (qty >= 1),
// snapshotting name, price and image from the catalog for new lines.
func (uc *CartUsecase) AddItem(ctx context.Context, userID, productID string, qty int) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" || qty <= 0 {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.Fetch(ctx, uid)
	if err != nil {
		return nil, err
	}
	expected := c.Version

	var snapshot cartdom.CartLine
	if _, ok := c.Line(pid); !ok {
		snapshot, err = uc.snapshot(ctx, pid)
		if err != nil {
			return nil, err
		}
	}

	if err := c.Add(pid, qty, snapshot, uc.clock.Now()); err != nil {
		return nil, invalid(err)
	}
	if err := uc.write(ctx, c, expected); err != nil {
		return nil, err
	}
	return uc.Fetch(ctx, uid)
}

// ------------------------------------------------------------
// helpers
// ------------------------------------------------------------

func (uc *CartUsecase) write(ctx context.Context, c *cartdom.Cart, expected int64) error {
	err := uc.repo.UpsertIfVersion(ctx, c, expected)
	if errors.Is(err, cartdom.ErrVersionConflict) {
		return fmt.Errorf("%w: %v", ErrCartConflict, err)
	}
	return err
}

// snapshot builds the line data for a product not yet in the cart.
// Without a catalog only the product id is known.
func (uc *CartUsecase) snapshot(ctx context.Context, productID string) (cartdom.CartLine, error) {
	if uc.products == nil {
		return cartdom.CartLine{ProductID: productID}, nil
	}

	res, err := uc.products.FetchByID(ctx, productID)
	if err != nil {
		return cartdom.CartLine{}, err
	}
	switch res.Status {
	case catdom.LookupFound:
		p := res.Product
		return cartdom.CartLine{
			ProductID: productID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
		}, nil
	case catdom.LookupNotFound:
		return cartdom.CartLine{}, ErrCartProductNotFound
	default:
		return cartdom.CartLine{}, fmt.Errorf("cart_usecase: product lookup failed: %w", res.Err)
	}
}

func invalid(err error) error {
	if errors.Is(err, cartdom.ErrInvalidCart) || errors.Is(err, cartdom.ErrInvalidQuantity) {
		return fmt.Errorf("%w: %v", ErrCartInvalidArgument, err)
	}
	return err
}
