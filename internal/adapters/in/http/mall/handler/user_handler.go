// internal/adapters/in/http/mall/handler/user_handler.go
package mallHandler

import (
	"log/slog"
	"net/http"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	udom "storefront/internal/domain/user"
)

// UserHandler serves account endpoints.
//
// Routes:
// - POST /mall/signup      (public)
// - GET  /mall/me/profile  (behind UserAuthMiddleware)
type UserHandler struct {
	uc  *usecase.UserUsecase
	log *slog.Logger
}

func NewUserHandler(uc *usecase.UserUsecase, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{uc: uc, log: logger.With("component", "mall_user_handler")}
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.uc == nil {
		internalError(w, "user handler is not configured")
		return
	}

	switch normalizePath(r.URL.Path) {
	case "/mall/signup":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.signUp(w, r)
	case "/mall/me/profile":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.profile(w, r)
	default:
		notFound(w)
	}
}

type signUpReq struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	ShopName string `json:"shopName"`
	Pincode  string `json:"pincode"`
}

func (h *UserHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpReq
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid json body")
		return
	}

	u, err := h.uc.SignUp(r.Context(), usecase.SignUpInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		ShopName: req.ShopName,
		Pincode:  req.Pincode,
	})
	if err != nil {
		if statusFor(err) >= http.StatusInternalServerError {
			h.log.ErrorContext(r.Context(), "sign up failed", "err", err)
		}
		writeUsecaseErr(w, err)
		return
	}

	h.log.InfoContext(r.Context(), "sign up ok", "uid", maskUID(u.ID))
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *UserHandler) profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.uc.GetByID(r.Context(), sess.UserID)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	ShopName  string `json:"shopName"`
	Pincode   string `json:"pincode"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func toUserResponse(u udom.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		ShopName:  u.ShopName,
		Pincode:   u.Pincode,
		CreatedAt: toRFC3339(u.CreatedAt),
	}
}
