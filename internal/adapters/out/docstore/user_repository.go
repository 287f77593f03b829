// internal/adapters/out/docstore/user_repository.go
package docstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/document"
	udom "storefront/internal/domain/user"
)

// =====================================================
// User Repository
// =====================================================
//
// IMPORTANT:
// - users docId is user.ID (= auth uid); auto ids are never used.
// - Create on an existing docId is a conflict.
// =====================================================

type UserRepository struct {
	Store      document.Store
	Collection string
}

func NewUserRepository(store document.Store, collection string) *UserRepository {
	if strings.TrimSpace(collection) == "" {
		collection = "users"
	}
	return &UserRepository{Store: store, Collection: collection}
}

var _ udom.Repository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(ctx context.Context, id string) (udom.User, error) {
	if r == nil || r.Store == nil {
		return udom.User{}, errNilStore
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.User{}, udom.ErrInvalidID
	}

	d, err := r.Store.Get(ctx, r.Collection, id)
	if errors.Is(err, document.ErrNotFound) {
		return udom.User{}, udom.ErrNotFound
	}
	if err != nil {
		return udom.User{}, err
	}
	return userFromDocument(d), nil
}

func (r *UserRepository) Create(ctx context.Context, v udom.User) (udom.User, error) {
	if r == nil || r.Store == nil {
		return udom.User{}, errNilStore
	}
	id := strings.TrimSpace(v.ID)
	if id == "" {
		return udom.User{}, udom.ErrInvalidID
	}

	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = v.CreatedAt
	}

	data := map[string]any{
		"name":      v.Name,
		"email":     v.Email,
		"phone":     v.Phone,
		"address":   v.Address,
		"shopName":  v.ShopName,
		"pincode":   v.Pincode,
		"createdAt": v.CreatedAt.UTC(),
		"updatedAt": v.UpdatedAt.UTC(),
	}

	_, err := r.Store.Create(ctx, r.Collection, id, data)
	if errors.Is(err, document.ErrAlreadyExists) {
		return udom.User{}, udom.ErrConflict
	}
	if err != nil {
		return udom.User{}, err
	}
	v.ID = id
	return v, nil
}

func userFromDocument(d document.Document) udom.User {
	u := udom.User{
		ID:       d.ID,
		Name:     strings.TrimSpace(asString(d.Field("name"))),
		Email:    strings.TrimSpace(asString(d.Field("email"))),
		Phone:    strings.TrimSpace(asString(d.Field("phone"))),
		Address:  strings.TrimSpace(asString(d.Field("address"))),
		ShopName: strings.TrimSpace(asString(d.Field("shopName"))),
		Pincode:  strings.TrimSpace(asString(d.Field("pincode"))),
	}
	if t, ok := asTime(d.Field("createdAt")); ok {
		u.CreatedAt = t
	} else {
		u.CreatedAt = d.CreateTime
	}
	if t, ok := asTime(d.Field("updatedAt")); ok {
		u.UpdatedAt = t
	} else {
		u.UpdatedAt = d.UpdateTime
	}
	return u
}
