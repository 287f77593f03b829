// internal/domain/user/repository_port.go
package user

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// Create fails with ErrConflict when the id is taken.
	Create(ctx context.Context, u User) (User, error)
}

// AccountCreator registers credentials with the auth provider and
// returns the new uid.
type AccountCreator interface {
	CreateAccount(ctx context.Context, email, password, displayName, phone string) (string, error)
	DeleteAccount(ctx context.Context, uid string) error
}
