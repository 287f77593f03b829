// internal/domain/document/repository_port.go
package document

import "context"

// Store is the remote document store. Implementations must translate their
// native "missing document" / "already exists" errors into ErrNotFound /
// ErrAlreadyExists, and failed conditions into ErrConflict.
type Store interface {
	// List returns the documents matching q (all documents when q is zero).
	List(ctx context.Context, collection string, q Query) ([]Document, error)

	Get(ctx context.Context, collection, id string) (Document, error)

	// Create inserts a new document. An empty id asks the store for a unique one.
	Create(ctx context.Context, collection, id string, data map[string]any) (Document, error)

	// Set overwrites the whole document, creating it when absent.
	Set(ctx context.Context, collection, id string, data map[string]any, conds ...Condition) error

	// Update changes individual fields of an existing document.
	Update(ctx context.Context, collection, id string, updates []FieldUpdate, conds ...Condition) error

	Delete(ctx context.Context, collection, id string) error
}
