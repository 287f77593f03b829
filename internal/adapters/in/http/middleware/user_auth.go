// internal/adapters/in/http/middleware/user_auth.go
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"storefront/internal/domain/session"
)

// TokenVerifier is satisfied by *auth.Client from the Firebase Admin SDK.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type ctxKey struct{ name string }

var ctxKeySession = ctxKey{"session"}

// UserAuthMiddleware verifies the Firebase ID token and stores an explicit
// session.Session in the request context.
type UserAuthMiddleware struct {
	Verifier TokenVerifier
	Log      *slog.Logger
}

func (m *UserAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.Verifier == nil {
			writeError(w, http.StatusServiceUnavailable, "user auth middleware not initialized")
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized: missing bearer token")
			return
		}
		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized: empty bearer token")
			return
		}

		token, err := m.Verifier.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			m.logger().WarnContext(r.Context(), "token verification failed", "err", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		s, err := session.New(token.UID, claimString(token, "email"), claimString(token, "name"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid uid in token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (m *UserAuthMiddleware) logger() *slog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return slog.Default()
}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFrom returns the session placed by UserAuthMiddleware.
func SessionFrom(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(session.Session)
	if !ok || !s.Valid() {
		return session.Session{}, false
	}
	return s, true
}

func claimString(token *fbauth.Token, key string) string {
	if token == nil || token.Claims == nil {
		return ""
	}
	if v, ok := token.Claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
