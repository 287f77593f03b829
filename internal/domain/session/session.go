// internal/domain/session/session.go
package session

import (
	"errors"
	"strings"
)

var ErrUnauthenticated = errors.New("session: unauthenticated")

// Session is the authenticated caller. It is built per request from a
// verified token and handed explicitly to whoever needs the user id.
type Session struct {
	UserID string
	Email  string
	Name   string
}

func New(userID, email, name string) (Session, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return Session{}, ErrUnauthenticated
	}
	return Session{
		UserID: uid,
		Email:  strings.TrimSpace(email),
		Name:   strings.TrimSpace(name),
	}, nil
}

func (s Session) Valid() bool {
	return strings.TrimSpace(s.UserID) != ""
}
