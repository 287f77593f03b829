package user

import (
	"errors"
	"testing"
	"time"
)

func TestValidatePassword(t *testing.T) {
	cases := map[string]error{
		"12345678":  nil,
		"1234567":   ErrInvalidPassword,
		"123456789": ErrInvalidPassword,
		"1234567a":  ErrInvalidPassword,
		"":          ErrInvalidPassword,
	}
	for pw, want := range cases {
		t.Run(pw, func(t *testing.T) {
			if err := ValidatePassword(pw); !errors.Is(err, want) {
				t.Fatalf("ValidatePassword(%q) = %v, want %v", pw, err, want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	u, err := New(" uid ", "Asha", "asha@example.com", "999", "Main St", "Asha Stores", "560001", now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if u.ID != "uid" || !u.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", u)
	}

	t.Run("missing field", func(t *testing.T) {
		_, err := New("uid", "Asha", "asha@example.com", "999", "Main St", "  ", "560001", now)
		if !errors.Is(err, ErrInvalidShopName) {
			t.Fatalf("expected ErrInvalidShopName, got %v", err)
		}
	})

	t.Run("bad email", func(t *testing.T) {
		err := ValidateProfile("Asha", "not-an-email", "999", "Main St", "Shop", "560001")
		if !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("expected ErrInvalidEmail, got %v", err)
		}
	})
}
