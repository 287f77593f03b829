// internal/adapters/out/firebaseauth/account_creator_fb.go
package firebaseauth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	udom "storefront/internal/domain/user"
)

// AccountCreatorFB registers email/password accounts in Firebase Auth.
type AccountCreatorFB struct {
	Client *fbauth.Client
}

func NewAccountCreatorFB(client *fbauth.Client) *AccountCreatorFB {
	return &AccountCreatorFB{Client: client}
}

var _ udom.AccountCreator = (*AccountCreatorFB)(nil)

var e164 = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// isE164 reports whether Firebase will accept p as a phone number.
func isE164(p string) bool {
	return e164.MatchString(p)
}

func (a *AccountCreatorFB) CreateAccount(ctx context.Context, email, password, displayName, phone string) (string, error) {
	if a == nil || a.Client == nil {
		return "", errors.New("firebase auth client is nil")
	}

	params := (&fbauth.UserToCreate{}).
		Email(strings.TrimSpace(email)).
		Password(password).
		DisplayName(strings.TrimSpace(displayName))

	// Firebase only accepts E.164 phone numbers; others stay on the profile only.
	if p := strings.TrimSpace(phone); isE164(p) {
		params = params.PhoneNumber(p)
	}

	rec, err := a.Client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) || fbauth.IsPhoneNumberAlreadyExists(err) {
			return "", fmt.Errorf("%w: %v", udom.ErrConflict, err)
		}
		return "", err
	}
	return rec.UID, nil
}

func (a *AccountCreatorFB) DeleteAccount(ctx context.Context, uid string) error {
	if a == nil || a.Client == nil {
		return errors.New("firebase auth client is nil")
	}
	return a.Client.DeleteUser(ctx, strings.TrimSpace(uid))
}
