// internal/adapters/out/firestore/document_store_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/domain/document"
)

// =====================================================
// Firestore DocumentStore
// =====================================================
//
// IMPORTANT:
// - Conditional writes (document.Condition) run inside RunTransaction so the
//   version check and the write see the same snapshot.
// - Unconditional writes go straight to the document reference.
// =====================================================

type DocumentStoreFS struct {
	Client *firestore.Client
}

func NewDocumentStoreFS(client *firestore.Client) *DocumentStoreFS {
	return &DocumentStoreFS{Client: client}
}

var _ document.Store = (*DocumentStoreFS)(nil)

var errNilClient = errors.New("firestore client is nil")

func (s *DocumentStoreFS) col(name string) *firestore.CollectionRef {
	return s.Client.Collection(name)
}

func (s *DocumentStoreFS) List(ctx context.Context, collection string, q document.Query) ([]document.Document, error) {
	if s.Client == nil {
		return nil, errNilClient
	}

	fq := s.col(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, string(f.Op), f.Value)
	}
	for _, o := range q.OrderBy {
		fq = fq.OrderBy(o.Field, firestore.Asc)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	it := fq.Documents(ctx)
	defer it.Stop()

	out := make([]document.Document, 0)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, translateErr(err)
		}
		out = append(out, snapToDocument(collection, snap))
	}
	return out, nil
}

func (s *DocumentStoreFS) Get(ctx context.Context, collection, id string) (document.Document, error) {
	if s.Client == nil {
		return document.Document{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return document.Document{}, document.ErrInvalid
	}

	snap, err := s.col(collection).Doc(id).Get(ctx)
	if err != nil {
		return document.Document{}, translateErr(err)
	}
	if snap == nil || !snap.Exists() {
		return document.Document{}, document.ErrNotFound
	}
	return snapToDocument(collection, snap), nil
}

func (s *DocumentStoreFS) Create(ctx context.Context, collection, id string, data map[string]any) (document.Document, error) {
	if s.Client == nil {
		return document.Document{}, errNilClient
	}

	var ref *firestore.DocumentRef
	if id = strings.TrimSpace(id); id == "" {
		ref = s.col(collection).NewDoc()
	} else {
		ref = s.col(collection).Doc(id)
	}
	if data == nil {
		data = map[string]any{}
	}

	wr, err := ref.Create(ctx, data)
	if err != nil {
		return document.Document{}, translateErr(err)
	}
	return document.Document{
		ID:         ref.ID,
		Collection: collection,
		Data:       data,
		CreateTime: wr.UpdateTime,
		UpdateTime: wr.UpdateTime,
	}, nil
}

func (s *DocumentStoreFS) Set(ctx context.Context, collection, id string, data map[string]any, conds ...document.Condition) error {
	if s.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return document.ErrInvalid
	}
	if data == nil {
		data = map[string]any{}
	}
	ref := s.col(collection).Doc(id)

	if len(conds) == 0 {
		_, err := ref.Set(ctx, data)
		return translateErr(err)
	}

	err := s.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		cur, err := txData(tx, ref)
		if err != nil {
			return err
		}
		if err := document.CheckAll(cur, conds); err != nil {
			return err
		}
		return tx.Set(ref, data)
	})
	return translateErr(err)
}

func (s *DocumentStoreFS) Update(ctx context.Context, collection, id string, updates []document.FieldUpdate, conds ...document.Condition) error {
	if s.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" || len(updates) == 0 {
		return document.ErrInvalid
	}
	ref := s.col(collection).Doc(id)

	fsUpdates, err := toFirestoreUpdates(updates)
	if err != nil {
		return err
	}

	if len(conds) == 0 {
		_, err := ref.Update(ctx, fsUpdates)
		return translateErr(err)
	}

	err = s.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		cur, err := txData(tx, ref)
		if err != nil {
			return err
		}
		if cur == nil {
			return document.ErrNotFound
		}
		if err := document.CheckAll(cur, conds); err != nil {
			return err
		}
		return tx.Update(ref, fsUpdates)
	})
	return translateErr(err)
}

func (s *DocumentStoreFS) Delete(ctx context.Context, collection, id string) error {
	if s.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return document.ErrInvalid
	}
	_, err := s.col(collection).Doc(id).Delete(ctx, firestore.Exists)
	return translateErr(err)
}

// =====================================================
// helpers
// =====================================================

// txData reads the current document inside a transaction; nil means absent.
func txData(tx *firestore.Transaction, ref *firestore.DocumentRef) (map[string]any, error) {
	snap, err := tx.Get(ref)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if snap == nil || !snap.Exists() {
		return nil, nil
	}
	return snap.Data(), nil
}

func toFirestoreUpdates(updates []document.FieldUpdate) ([]firestore.Update, error) {
	out := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		if len(u.Path) == 0 {
			return nil, document.ErrInvalid
		}
		var v any
		switch {
		case u.Delete:
			v = firestore.Delete
		case u.Increment != 0:
			v = firestore.Increment(u.Increment)
		default:
			v = u.Value
		}
		out = append(out, firestore.Update{FieldPath: firestore.FieldPath(u.Path), Value: v})
	}
	return out, nil
}

func snapToDocument(collection string, snap *firestore.DocumentSnapshot) document.Document {
	return document.Document{
		ID:         snap.Ref.ID,
		Collection: collection,
		Data:       snap.Data(),
		CreateTime: snap.CreateTime,
		UpdateTime: snap.UpdateTime,
	}
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, document.ErrConflict) || errors.Is(err, document.ErrNotFound) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return document.ErrNotFound
	case codes.AlreadyExists:
		return document.ErrAlreadyExists
	case codes.Aborted:
		return errors.Join(document.ErrConflict, err)
	}
	return err
}
