// internal/domain/user/entity.go
package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User is the storefront account profile.
// ID equals the auth provider uid (users docId).
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	ShopName  string    `json:"shopName"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Errors (single source)
var (
	ErrInvalidID       = errors.New("user: invalid id")
	ErrInvalidName     = errors.New("user: invalid name")
	ErrInvalidEmail    = errors.New("user: invalid email")
	ErrInvalidPhone    = errors.New("user: invalid phone")
	ErrInvalidAddress  = errors.New("user: invalid address")
	ErrInvalidShopName = errors.New("user: invalid shopName")
	ErrInvalidPincode  = errors.New("user: invalid pincode")
	ErrInvalidPassword = errors.New("user: password must be exactly 8 digits")

	ErrNotFound = errors.New("user: not found")
	ErrConflict = errors.New("user: conflict")
)

// Policy
var (
	MaxFieldLength = 200
	PasswordLength = 8
)

func New(id, name, email, phone, address, shopName, pincode string, now time.Time) (User, error) {
	u := User{
		ID:        strings.TrimSpace(id),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		Address:   strings.TrimSpace(address),
		ShopName:  strings.TrimSpace(shopName),
		Pincode:   strings.TrimSpace(pincode),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := u.validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// ValidateProfile checks everything except the id, which the auth
// provider assigns later.
func ValidateProfile(name, email, phone, address, shopName, pincode string) error {
	u := User{
		ID:       "pending",
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Phone:    strings.TrimSpace(phone),
		Address:  strings.TrimSpace(address),
		ShopName: strings.TrimSpace(shopName),
		Pincode:  strings.TrimSpace(pincode),
	}
	return u.validate()
}

// ValidatePassword requires exactly PasswordLength decimal digits.
func ValidatePassword(pw string) error {
	if len(pw) != PasswordLength {
		return ErrInvalidPassword
	}
	for _, r := range pw {
		if r < '0' || r > '9' {
			return ErrInvalidPassword
		}
	}
	return nil
}

func (u User) validate() error {
	if u.ID == "" {
		return ErrInvalidID
	}
	if !within(u.Name) {
		return ErrInvalidName
	}
	if !within(u.Email) {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if !within(u.Phone) {
		return ErrInvalidPhone
	}
	if !within(u.Address) {
		return ErrInvalidAddress
	}
	if !within(u.ShopName) {
		return ErrInvalidShopName
	}
	if !within(u.Pincode) {
		return ErrInvalidPincode
	}
	return nil
}

func within(s string) bool {
	n := len([]rune(s))
	return n > 0 && n <= MaxFieldLength
}
