package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
)

type fakeVerifier struct {
	token *fbauth.Token
	err   error
	seen  string
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	f.seen = idToken
	return f.token, f.err
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestUserAuthMiddleware(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(s.UserID + "|" + s.Email + "|" + s.Name))
	})

	cases := []struct {
		name     string
		verifier TokenVerifier
		header   string
		want     int
		wantBody string
	}{
		{
			name: "valid token",
			verifier: &fakeVerifier{token: &fbauth.Token{UID: "uid-1", Claims: map[string]interface{}{
				"email": "asha@example.com", "name": "Asha",
			}}},
			header:   "Bearer tok",
			want:     http.StatusOK,
			wantBody: "uid-1|asha@example.com|Asha",
		},
		{name: "missing header", verifier: &fakeVerifier{}, want: http.StatusUnauthorized},
		{name: "not bearer", verifier: &fakeVerifier{}, header: "Basic abc", want: http.StatusUnauthorized},
		{name: "empty bearer", verifier: &fakeVerifier{}, header: "Bearer   ", want: http.StatusUnauthorized},
		{name: "rejected token", verifier: &fakeVerifier{err: errors.New("expired")}, header: "Bearer tok", want: http.StatusUnauthorized},
		{name: "blank uid", verifier: &fakeVerifier{token: &fbauth.Token{UID: " "}}, header: "Bearer tok", want: http.StatusUnauthorized},
		{name: "not configured", header: "Bearer tok", want: http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := &UserAuthMiddleware{Verifier: tc.verifier, Log: quietLogger()}
			req := httptest.NewRequest(http.MethodGet, "/mall/me/cart", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			mw.Handler(echo).ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.wantBody != "" && rec.Body.String() != tc.wantBody {
				t.Fatalf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := CORS([]string{"https://shop.example.com"})(next)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/mall/me/cart", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
			t.Fatalf("allow origin = %q", got)
		}
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("allow origin = %q", got)
		}
	})
}

func TestRecover(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()
	Recover(quietLogger())(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestLog_KeepsClientRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })
	h := RequestLog(quietLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, "rid-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(headerRequestID) != "rid-1" || rec.Code != http.StatusAccepted {
		t.Fatalf("rid = %q status = %d", rec.Header().Get(headerRequestID), rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatalf("request id not generated")
	}
}
