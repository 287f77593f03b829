package mail

import (
	"context"
	"errors"
	"strings"
	"testing"

	udom "storefront/internal/domain/user"
)

type recordingClient struct {
	from, to, subject, body string
	err                     error
}

func (c *recordingClient) Send(_ context.Context, from, to, subject, body string) error {
	c.from, c.to, c.subject, c.body = from, to, subject, body
	return c.err
}

func TestWelcomeMailer(t *testing.T) {
	client := &recordingClient{}
	m := NewWelcomeMailer(client, "no-reply@shop.test", "Kirana Mart")

	err := m.SendWelcome(context.Background(), udom.User{Name: "Asha", Email: " asha@example.com ", ShopName: "Asha Stores", Pincode: "560001"})
	if err != nil {
		t.Fatalf("SendWelcome: %v", err)
	}
	if client.to != "asha@example.com" || client.from != "no-reply@shop.test" {
		t.Fatalf("addresses = %q -> %q", client.from, client.to)
	}
	if client.subject != "Welcome to Kirana Mart" {
		t.Fatalf("subject = %q", client.subject)
	}
	if !strings.Contains(client.body, "Asha Stores") {
		t.Fatalf("body missing shop name: %q", client.body)
	}

	if err := m.SendWelcome(context.Background(), udom.User{}); !errors.Is(err, udom.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestSendGridClient_Validation(t *testing.T) {
	c := NewSendGridClient("", "Shop", nil)
	if err := c.Send(context.Background(), "a@b.c", "d@e.f", "s", "b"); err == nil {
		t.Fatalf("expected error for empty api key")
	}
	c = NewSendGridClient("key", "Shop", nil)
	if err := c.Send(context.Background(), "", "d@e.f", "s", "b"); err == nil {
		t.Fatalf("expected error for empty from")
	}
}

func TestSendGridClient_RejectsIncompleteMessage(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name          string
		key, from, to string
	}{
		{"no api key", "", "a@shop.test", "b@example.com"},
		{"no from", "key", "", "b@example.com"},
		{"no to", "key", "a@shop.test", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewSendGridClient(tc.key, "Shop", nil)
			if err := c.Send(ctx, tc.from, tc.to, "s", "b"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
