package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"storefront/internal/adapters/out/docstore"
	"storefront/internal/adapters/out/memory"
	udom "storefront/internal/domain/user"
)

type fakeAccounts struct {
	nextUID   string
	createErr error
	created   []string
	deleted   []string
}

func (f *fakeAccounts) CreateAccount(_ context.Context, email, _, _, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, email)
	return f.nextUID, nil
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) SendWelcome(_ context.Context, u udom.User) error {
	m.sent = append(m.sent, u.Email)
	return m.err
}

func validSignUp() SignUpInput {
	return SignUpInput{
		Name:     "Asha",
		Phone:    "9876543210",
		Email:    "asha@example.com",
		Password: "12345678",
		Address:  "12 Main St",
		ShopName: "Asha Stores",
		Pincode:  "560001",
	}
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestUserUsecase_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("success creates profile and sends mail", func(t *testing.T) {
		repo := docstore.NewUserRepository(memory.NewDocumentStore(), "users")
		accounts := &fakeAccounts{nextUID: "uid-1"}
		mailer := &fakeMailer{err: errors.New("mail down")}
		uc := NewUserUsecase(repo, accounts, mailer, quietLogger())

		u, err := uc.SignUp(ctx, validSignUp())
		if err != nil {
			t.Fatalf("SignUp: %v", err)
		}
		if u.ID != "uid-1" || u.ShopName != "Asha Stores" {
			t.Fatalf("user = %+v", u)
		}
		if len(mailer.sent) != 1 {
			t.Fatalf("welcome mail not attempted")
		}
		got, err := uc.GetByID(ctx, "uid-1")
		if err != nil || got.Email != "asha@example.com" {
			t.Fatalf("GetByID = %+v, %v", got, err)
		}
	})

	t.Run("invalid password never reaches auth", func(t *testing.T) {
		accounts := &fakeAccounts{nextUID: "uid-2"}
		uc := NewUserUsecase(docstore.NewUserRepository(memory.NewDocumentStore(), ""), accounts, nil, quietLogger())

		in := validSignUp()
		in.Password = "abc12345"
		if _, err := uc.SignUp(ctx, in); !errors.Is(err, udom.ErrInvalidPassword) {
			t.Fatalf("expected ErrInvalidPassword, got %v", err)
		}
		if len(accounts.created) != 0 {
			t.Fatalf("auth called on invalid input")
		}
	})

	t.Run("missing field", func(t *testing.T) {
		uc := NewUserUsecase(docstore.NewUserRepository(memory.NewDocumentStore(), ""), &fakeAccounts{}, nil, quietLogger())
		in := validSignUp()
		in.Pincode = ""
		if _, err := uc.SignUp(ctx, in); !errors.Is(err, udom.ErrInvalidPincode) {
			t.Fatalf("expected ErrInvalidPincode, got %v", err)
		}
	})

	t.Run("profile conflict rolls back auth account", func(t *testing.T) {
		store := memory.NewDocumentStore()
		store.Seed("users", "uid-3", map[string]any{"name": "existing"})
		accounts := &fakeAccounts{nextUID: "uid-3"}
		uc := NewUserUsecase(docstore.NewUserRepository(store, "users"), accounts, nil, quietLogger())

		if _, err := uc.SignUp(ctx, validSignUp()); !errors.Is(err, udom.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if len(accounts.deleted) != 1 || accounts.deleted[0] != "uid-3" {
			t.Fatalf("rollback = %v", accounts.deleted)
		}
	})

	t.Run("auth failure propagates", func(t *testing.T) {
		accounts := &fakeAccounts{createErr: udom.ErrConflict}
		uc := NewUserUsecase(docstore.NewUserRepository(memory.NewDocumentStore(), ""), accounts, nil, quietLogger())
		if _, err := uc.SignUp(ctx, validSignUp()); !errors.Is(err, udom.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})
}
