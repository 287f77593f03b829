// internal/adapters/out/memory/document_store_mem.go
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/document"
)

// DocumentStore is a process-local document.Store used for development and tests.
type DocumentStore struct {
	mu   sync.RWMutex
	cols map[string]map[string]*record
	now  func() time.Time
}

type record struct {
	data      map[string]any
	createdAt time.Time
	updatedAt time.Time
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		cols: map[string]map[string]*record{},
		now:  func() time.Time { return time.Now().UTC() },
	}
}

var _ document.Store = (*DocumentStore)(nil)

// Seed writes documents without going through Create (test/dev fixtures).
func (s *DocumentStore) Seed(collection, id string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.col(collection)[id] = &record{data: normalize(data), createdAt: now, updatedAt: now}
}

func (s *DocumentStore) col(name string) map[string]*record {
	c, ok := s.cols[name]
	if !ok {
		c = map[string]*record{}
		s.cols[name] = c
	}
	return c
}

func (s *DocumentStore) List(ctx context.Context, collection string, q document.Query) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]document.Document, 0)
	for id, r := range s.cols[collection] {
		if !matches(r.data, q.Filters) {
			continue
		}
		out = append(out, toDocument(collection, id, r))
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.OrderBy {
			c := compare(out[i].Data[o.Field], out[j].Data[o.Field])
			if c != 0 {
				return c < 0
			}
		}
		return out[i].ID < out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.cols[collection][id]
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	return toDocument(collection, id, r), nil
}

func (s *DocumentStore) Create(ctx context.Context, collection, id string, data map[string]any) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	c := s.col(collection)
	if _, exists := c[id]; exists {
		return document.Document{}, document.ErrAlreadyExists
	}
	now := s.now()
	r := &record{data: normalize(data), createdAt: now, updatedAt: now}
	c[id] = r
	return toDocument(collection, id, r), nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, data map[string]any, conds ...document.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.col(collection)
	cur, exists := c[id]
	var curData map[string]any
	if exists {
		curData = cur.data
	}
	if err := document.CheckAll(curData, conds); err != nil {
		return err
	}

	now := s.now()
	r := &record{data: normalize(data), createdAt: now, updatedAt: now}
	if exists {
		r.createdAt = cur.createdAt
	}
	c[id] = r
	return nil
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, updates []document.FieldUpdate, conds ...document.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.cols[collection][id]
	if !ok {
		return document.ErrNotFound
	}
	if err := document.CheckAll(r.data, conds); err != nil {
		return err
	}

	// apply on a copy so a failed update leaves the record untouched
	next := cloneMap(r.data)
	ups := make([]document.FieldUpdate, len(updates))
	for i, u := range updates {
		u.Value = normalizeValue(u.Value)
		ups[i] = u
	}
	if err := document.ApplyUpdates(next, ups); err != nil {
		return err
	}
	r.data = next
	r.updatedAt = s.now()
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cols[collection]
	if _, ok := c[id]; !ok {
		return document.ErrNotFound
	}
	delete(c, id)
	return nil
}

// ==============================
// helpers
// ==============================

func toDocument(collection, id string, r *record) document.Document {
	return document.Document{
		ID:         id,
		Collection: collection,
		Data:       cloneMap(r.data),
		CreateTime: r.createdAt,
		UpdateTime: r.updatedAt,
	}
}

func matches(data map[string]any, filters []document.Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok {
			return false
		}
		if compare(v, normalizeValue(f.Value)) != 0 {
			return false
		}
	}
	return true
}

// compare orders values the way a document store would for a single type;
// values of different kinds order by kind name.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	if reflect.DeepEqual(a, b) {
		return 0
	}
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// normalize deep-copies data and folds Go numeric kinds into int64/float64,
// matching what a remote store hands back.
func normalize(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case map[string]any:
		return normalize(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalizeValue(x[i])
		}
		return out
	case time.Time:
		return x.UTC()
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return normalize(m)
}
