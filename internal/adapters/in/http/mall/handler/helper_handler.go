// internal/adapters/in/http/mall/handler/helper_handler.go
package mallHandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	mallquery "storefront/internal/application/query/mall"
	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/session"
	udom "storefront/internal/domain/user"
)

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(msg)})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed")
}

func notFound(w http.ResponseWriter) {
	writeErr(w, http.StatusNotFound, "not_found")
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusInternalServerError, msg)
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if dst == nil {
		return errors.New("dst is nil")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)) // 1MB
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func normalizePath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

// segmentAfter returns the single path segment following prefix.
// "/mall/products/p1" with "/mall/products/" -> "p1".
func segmentAfter(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(path, prefix))
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func toRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseVersion(s string) (int64, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// maskUID keeps auth uids out of logs.
func maskUID(uid string) string {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ""
	}
	if len(uid) <= 6 {
		return "***"
	}
	return "***" + uid[len(uid)-6:]
}

// statusFor maps use case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrCartConflict), errors.Is(err, udom.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrCartProductNotFound), errors.Is(err, udom.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrCartInvalidArgument),
		errors.Is(err, mallquery.ErrInvalidArgument),
		errors.Is(err, cartdom.ErrInvalidCart),
		errors.Is(err, cartdom.ErrInvalidQuantity),
		isUserValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isUserValidation(err error) bool {
	for _, target := range []error{
		udom.ErrInvalidID,
		udom.ErrInvalidName,
		udom.ErrInvalidEmail,
		udom.ErrInvalidPhone,
		udom.ErrInvalidAddress,
		udom.ErrInvalidShopName,
		udom.ErrInvalidPincode,
		udom.ErrInvalidPassword,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeUsecaseErr hides internal detail on 5xx.
func writeUsecaseErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		internalError(w, "internal error")
		return
	}
	writeErr(w, status, err.Error())
}
