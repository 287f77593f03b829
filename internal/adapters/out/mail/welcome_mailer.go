// internal/adapters/out/mail/welcome_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	udom "storefront/internal/domain/user"
)

// WelcomeMailer sends the post sign-up greeting.
type WelcomeMailer struct {
	client      EmailClient
	fromAddress string
	storeName   string
}

func NewWelcomeMailer(client EmailClient, fromAddress, storeName string) *WelcomeMailer {
	if strings.TrimSpace(storeName) == "" {
		storeName = "Storefront"
	}
	return &WelcomeMailer{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
		storeName:   strings.TrimSpace(storeName),
	}
}

func (m *WelcomeMailer) SendWelcome(ctx context.Context, u udom.User) error {
	to := strings.TrimSpace(u.Email)
	if to == "" {
		return udom.ErrInvalidEmail
	}

	subject := fmt.Sprintf("Welcome to %s", m.storeName)
	body := fmt.Sprintf(`Hello %s,

Your account for %s is ready.
You can now browse the catalog and order for your shop.

Shop:    %s
Pincode: %s

- %s`,
		u.Name, m.storeName, u.ShopName, u.Pincode, m.storeName)

	return m.client.Send(ctx, m.fromAddress, to, subject, body)
}
