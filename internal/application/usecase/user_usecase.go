// internal/application/usecase/user_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	udom "storefront/internal/domain/user"
)

// WelcomeMailer is optional; failures never fail the sign-up.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, u udom.User) error
}

type SignUpInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	ShopName string `json:"shopName"`
	Pincode  string `json:"pincode"`
}

type UserUsecase struct {
	repo     udom.Repository
	accounts udom.AccountCreator
	mailer   WelcomeMailer
	clock    Clock
	log      *slog.Logger
}

func NewUserUsecase(repo udom.Repository, accounts udom.AccountCreator, mailer WelcomeMailer, logger *slog.Logger) *UserUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserUsecase{
		repo:     repo,
		accounts: accounts,
		mailer:   mailer,
		clock:    systemClock{},
		log:      logger.With("component", "user_usecase"),
	}
}

func (uc *UserUsecase) GetByID(ctx context.Context, id string) (udom.User, error) {
	return uc.repo.GetByID(ctx, strings.TrimSpace(id))
}

// SignUp validates the form, creates the auth account and then the
// profile document keyed by the new uid. If the profile cannot be written
// the auth account is removed again.
func (uc *UserUsecase) SignUp(ctx context.Context, in SignUpInput) (udom.User, error) {
	if err := udom.ValidateProfile(in.Name, in.Email, in.Phone, in.Address, in.ShopName, in.Pincode); err != nil {
		return udom.User{}, err
	}
	if err := udom.ValidatePassword(in.Password); err != nil {
		return udom.User{}, err
	}
	if uc.accounts == nil {
		return udom.User{}, errors.New("user_usecase: account creator is not configured")
	}

	uid, err := uc.accounts.CreateAccount(ctx, in.Email, in.Password, in.Name, in.Phone)
	if err != nil {
		return udom.User{}, err
	}

	u, err := udom.New(uid, in.Name, in.Email, in.Phone, in.Address, in.ShopName, in.Pincode, uc.clock.Now())
	if err != nil {
		uc.rollbackAccount(ctx, uid)
		return udom.User{}, err
	}

	created, err := uc.repo.Create(ctx, u)
	if err != nil {
		uc.rollbackAccount(ctx, uid)
		return udom.User{}, fmt.Errorf("user_usecase: create profile: %w", err)
	}

	if uc.mailer != nil {
		if err := uc.mailer.SendWelcome(ctx, created); err != nil {
			uc.log.WarnContext(ctx, "welcome mail failed", "uid", uid, "err", err)
		}
	}

	uc.log.InfoContext(ctx, "user signed up", "uid", uid)
	return created, nil
}

func (uc *UserUsecase) rollbackAccount(ctx context.Context, uid string) {
	if err := uc.accounts.DeleteAccount(ctx, uid); err != nil {
		uc.log.ErrorContext(ctx, "rollback auth account failed", "uid", uid, "err", err)
	}
}
