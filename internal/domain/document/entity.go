// internal/domain/document/entity.go
package document

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("document: not found")
	ErrAlreadyExists = errors.New("document: already exists")
	ErrConflict      = errors.New("document: condition failed")
	ErrInvalid       = errors.New("document: invalid argument")
)

// Document is one record of a collection as returned by the store.
// Data holds the raw field map; typed mapping happens in the callers.
type Document struct {
	ID         string
	Collection string
	Data       map[string]any
	CreateTime time.Time
	UpdateTime time.Time
}

// Field returns a top-level field, or nil when absent.
func (d Document) Field(name string) any {
	if d.Data == nil {
		return nil
	}
	return d.Data[name]
}

// ==============================
// Query
// ==============================

type Op string

const (
	OpEqual Op = "=="
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

type Order struct {
	Field string
}

// Query supports only the shapes the storefront needs:
// equality filters, ascending order and a result cap.
type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
}

type QueryOption func(*Query)

func Equal(field string, value any) QueryOption {
	return func(q *Query) {
		q.Filters = append(q.Filters, Filter{Field: field, Op: OpEqual, Value: value})
	}
}

func OrderAsc(field string) QueryOption {
	return func(q *Query) {
		q.OrderBy = append(q.OrderBy, Order{Field: field})
	}
}

func Limit(n int) QueryOption {
	return func(q *Query) {
		if n > 0 {
			q.Limit = n
		}
	}
}

func BuildQuery(opts ...QueryOption) Query {
	var q Query
	for _, o := range opts {
		if o != nil {
			o(&q)
		}
	}
	return q
}

// ==============================
// Updates
// ==============================

// FieldUpdate changes one (possibly nested) field.
// Exactly one of Value / Delete / Increment is meaningful:
// Delete removes the field, Increment (non-zero) adds to a numeric field,
// otherwise Value is written.
type FieldUpdate struct {
	Path      []string
	Value     any
	Delete    bool
	Increment int64
}

func Set(value any, path ...string) FieldUpdate {
	return FieldUpdate{Path: path, Value: value}
}

func DeleteField(path ...string) FieldUpdate {
	return FieldUpdate{Path: path, Delete: true}
}

func Increment(n int64, path ...string) FieldUpdate {
	return FieldUpdate{Path: path, Increment: n}
}

// Condition guards a write. The only supported kind compares an integer
// version field; an absent document (or field) counts as version 0.
type Condition struct {
	Field   string
	Version int64
}

func IfVersion(field string, version int64) Condition {
	return Condition{Field: field, Version: version}
}

// Check evaluates the condition against the current data (nil = absent).
func (c Condition) Check(current map[string]any) bool {
	var have int64
	if current != nil {
		if n, ok := AsInt64(current[c.Field]); ok {
			have = n
		}
	}
	return have == c.Version
}

func CheckAll(current map[string]any, conds []Condition) error {
	for _, c := range conds {
		if !c.Check(current) {
			return ErrConflict
		}
	}
	return nil
}

// ApplyUpdates mutates data in place. Stores without native field updates
// (memory, postgres) share this so that all backends agree on semantics.
func ApplyUpdates(data map[string]any, updates []FieldUpdate) error {
	for _, u := range updates {
		if len(u.Path) == 0 {
			return ErrInvalid
		}
		parent := data
		for _, seg := range u.Path[:len(u.Path)-1] {
			next, ok := parent[seg].(map[string]any)
			if !ok {
				if u.Delete {
					parent = nil
					break
				}
				next = map[string]any{}
				parent[seg] = next
			}
			parent = next
		}
		if parent == nil {
			continue
		}
		leaf := u.Path[len(u.Path)-1]
		switch {
		case u.Delete:
			delete(parent, leaf)
		case u.Increment != 0:
			cur, _ := AsInt64(parent[leaf])
			parent[leaf] = cur + u.Increment
		default:
			parent[leaf] = u.Value
		}
	}
	return nil
}

// AsInt64 accepts the numeric shapes produced by the store backends.
func AsInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float32:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}
