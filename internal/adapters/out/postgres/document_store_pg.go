// internal/adapters/out/postgres/document_store_pg.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/document"
)

// =====================================================
// PostgreSQL DocumentStore (JSONB)
// =====================================================
//
// Schema (see Migrate):
//   documents(collection text, id text, data jsonb, created_at, updated_at)
//   PRIMARY KEY (collection, id)
//
// Field updates and version conditions are evaluated in Go under
// SELECT ... FOR UPDATE, so semantics match the other stores.
// =====================================================

type DocumentStorePG struct {
	DB  *sql.DB
	now func() time.Time
}

func NewDocumentStorePG(db *sql.DB) *DocumentStorePG {
	return &DocumentStorePG{
		DB:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ document.Store = (*DocumentStorePG)(nil)

const (
	migrateSQL = `
CREATE TABLE IF NOT EXISTS documents (
  collection TEXT NOT NULL,
  id TEXT NOT NULL,
  data JSONB NOT NULL DEFAULT '{}'::jsonb,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (collection, id)
)`

	getSQL = `SELECT data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`

	lockSQL = `SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`

	insertSQL = `INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) ON CONFLICT (collection, id) DO NOTHING`

	upsertSQL = `INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	updateSQL = `UPDATE documents SET data = $3, updated_at = $4 WHERE collection = $1 AND id = $2`

	deleteSQL = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

// Migrate creates the documents table when missing.
func (s *DocumentStorePG) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, migrateSQL)
	return err
}

func (s *DocumentStorePG) List(ctx context.Context, collection string, q document.Query) ([]document.Document, error) {
	query, args, err := buildListQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]document.Document, 0)
	for rows.Next() {
		var (
			id       string
			raw      []byte
			created  time.Time
			modified time.Time
		)
		if err := rows.Scan(&id, &raw, &created, &modified); err != nil {
			return nil, err
		}
		data, err := decodeData(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, document.Document{
			ID: id, Collection: collection, Data: data,
			CreateTime: created, UpdateTime: modified,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildListQuery renders equality filters as JSONB containment and orders
// by the JSONB value, which compares numbers numerically.
func buildListQuery(collection string, q document.Query) (string, []any, error) {
	var sb strings.Builder
	args := []any{collection}
	sb.WriteString(`SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1`)

	for _, f := range q.Filters {
		if f.Op != document.OpEqual {
			return "", nil, fmt.Errorf("postgres: unsupported operator %q", f.Op)
		}
		b, err := json.Marshal(map[string]any{f.Field: f.Value})
		if err != nil {
			return "", nil, err
		}
		args = append(args, string(b))
		fmt.Fprintf(&sb, ` AND data @> $%d::jsonb`, len(args))
	}

	sb.WriteString(` ORDER BY `)
	for _, o := range q.OrderBy {
		args = append(args, o.Field)
		fmt.Fprintf(&sb, `data -> $%d ASC, `, len(args))
	}
	sb.WriteString(`id ASC`)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	return sb.String(), args, nil
}

func (s *DocumentStorePG) Get(ctx context.Context, collection, id string) (document.Document, error) {
	var (
		raw      []byte
		created  time.Time
		modified time.Time
	)
	err := s.DB.QueryRowContext(ctx, getSQL, collection, strings.TrimSpace(id)).Scan(&raw, &created, &modified)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, document.ErrNotFound
	}
	if err != nil {
		return document.Document{}, err
	}
	data, err := decodeData(raw)
	if err != nil {
		return document.Document{}, err
	}
	return document.Document{
		ID: id, Collection: collection, Data: data,
		CreateTime: created, UpdateTime: modified,
	}, nil
}

func (s *DocumentStorePG) Create(ctx context.Context, collection, id string, data map[string]any) (document.Document, error) {
	if id = strings.TrimSpace(id); id == "" {
		id = uuid.NewString()
	}
	raw, err := encodeData(data)
	if err != nil {
		return document.Document{}, err
	}
	now := s.now()

	res, err := s.DB.ExecContext(ctx, insertSQL, collection, id, raw, now)
	if err != nil {
		return document.Document{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return document.Document{}, document.ErrAlreadyExists
	}

	stored, err := decodeData([]byte(raw))
	if err != nil {
		return document.Document{}, err
	}
	return document.Document{
		ID: id, Collection: collection, Data: stored,
		CreateTime: now, UpdateTime: now,
	}, nil
}

func (s *DocumentStorePG) Set(ctx context.Context, collection, id string, data map[string]any, conds ...document.Condition) error {
	raw, err := encodeData(data)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return document.ErrInvalid
	}

	if len(conds) == 0 {
		_, err := s.DB.ExecContext(ctx, upsertSQL, collection, id, raw, s.now())
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		cur, found, err := lockDoc(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		if err := document.CheckAll(cur, conds); err != nil {
			return err
		}
		if found {
			_, err = tx.ExecContext(ctx, updateSQL, collection, id, raw, s.now())
			return err
		}
		// No row to lock: a concurrent first write wins the insert.
		res, err := tx.ExecContext(ctx, insertSQL, collection, id, raw, s.now())
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return document.ErrConflict
		}
		return nil
	})
}

func (s *DocumentStorePG) Update(ctx context.Context, collection, id string, updates []document.FieldUpdate, conds ...document.Condition) error {
	id = strings.TrimSpace(id)
	if id == "" || len(updates) == 0 {
		return document.ErrInvalid
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		cur, found, err := lockDoc(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		if !found {
			return document.ErrNotFound
		}
		if err := document.CheckAll(cur, conds); err != nil {
			return err
		}
		if err := document.ApplyUpdates(cur, updates); err != nil {
			return err
		}
		raw, err := encodeData(cur)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, updateSQL, collection, id, raw, s.now())
		return err
	})
}

func (s *DocumentStorePG) Delete(ctx context.Context, collection, id string) error {
	res, err := s.DB.ExecContext(ctx, deleteSQL, collection, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return document.ErrNotFound
	}
	return nil
}

// =====================================================
// helpers
// =====================================================

func (s *DocumentStorePG) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func lockDoc(ctx context.Context, tx *sql.Tx, collection, id string) (map[string]any, bool, error) {
	var raw []byte
	err := tx.QueryRowContext(ctx, lockSQL, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, err := decodeData(raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func encodeData(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("postgres: encode document: %w", err)
	}
	return string(b), nil
}

func decodeData(raw []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("postgres: decode document: %w", err)
	}
	for k, v := range out {
		out[k] = integralToInt(v)
	}
	return out, nil
}

// integralToInt turns whole JSON numbers back into int64 so counters and
// versions read the same as from Firestore.
func integralToInt(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case map[string]any:
		for k, vv := range x {
			x[k] = integralToInt(vv)
		}
		return x
	case []any:
		for i := range x {
			x[i] = integralToInt(x[i])
		}
		return x
	}
	return v
}
