// internal/domain/cart/repository_port.go
package cart

import "context"

// Repository persists one cart document per user.
type Repository interface {
	// GetByUserID returns (nil, nil) when the user has no cart document.
	GetByUserID(ctx context.Context, userID string) (*Cart, error)

	// Upsert overwrites the whole cart (last writer wins).
	Upsert(ctx context.Context, c *Cart) error

	// UpsertIfVersion overwrites the cart only when the stored version equals
	// expected (absent = 0). Fails with ErrVersionConflict otherwise.
	UpsertIfVersion(ctx context.Context, c *Cart, expected int64) error

	// RemoveLine deletes one line without touching the others.
	// A missing cart or line is not an error.
	RemoveLine(ctx context.Context, userID, productID string) error

	// Clear empties the lines, creating an empty cart document when absent.
	Clear(ctx context.Context, userID string) error
}
