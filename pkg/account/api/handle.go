package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/raghavverse/simple-auth/pkg/account"
	"github.com/raghavverse/simple-auth/pkg/authn"
	"github.com/raghavverse/simple-auth/pkg/token"
)

// Handler exposes the account service over HTTP.
type Handler struct {
	service *account.Service
	cookies token.CookieSetter
}

// NewHandler creates an account API handler.
func NewHandler(service *account.Service, cookies token.CookieSetter) *Handler {
	return &Handler{
		service: service,
		cookies: cookies,
	}
}

// AuthRoutes returns the /api/auth router. authGate protects the routes
// that require an authenticated caller.
func (h *Handler) AuthRoutes(authGate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Post("/send-reset-otp", h.SendResetOtp)
	r.Post("/resend-reset-otp", h.ResendResetOtp)
	r.Post("/reset-password", h.ResetPassword)

	r.Group(func(pr chi.Router) {
		pr.Use(authGate)
		pr.Post("/send-verify-otp", h.SendVerifyOtp)
		pr.Post("/verify-account", h.VerifyAccount)
		pr.Get("/is-auth", h.IsAuthenticated)
	})

	return r
}

// UserRoutes returns the /api/user router; every route requires auth.
func (h *Handler) UserRoutes(authGate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(authGate)
		pr.Get("/data", h.GetUserData)
	})
	return r
}

// Register handles POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	user, session, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.cookies.SetCookie(w, token.CookieName, session.Token, session.ExpiresAt)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Success: true,
		Message: "User registered successfully",
		Data: RegisterData{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
		},
	})
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	user, session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.cookies.SetCookie(w, token.CookieName, session.Token, session.ExpiresAt)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{
		Success: true,
		Message: "Login successful",
		Data: LoginData{
			ID:                user.ID.String(),
			Name:              user.Name,
			Email:             user.Email,
			IsAccountVerified: user.IsVerified,
		},
	})
}

// Logout handles POST /logout. Sessions are stateless, so logout is
// enforced by deleting the client-held cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearCookie(w, token.CookieName)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Message: "Logged out"})
}

// SendVerifyOtp handles POST /send-verify-otp (auth required)
func (h *Handler) SendVerifyOtp(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.service.SendVerifyOTP(r.Context(), userID); err != nil {
		h.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Message: "Verification OTP sent successfully"})
}

// VerifyAccount handles POST /verify-account (auth required)
func (h *Handler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req VerifyAccountRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.VerifyEmail(r.Context(), userID, req.Otp); err != nil {
		h.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Message: "Email verified successfully"})
}

// IsAuthenticated handles GET /is-auth (auth required). Reaching it means
// the gate accepted the session.
func (h *Handler) IsAuthenticated(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Message: "User is authenticated"})
}

// SendResetOtp handles POST /send-reset-otp
func (h *Handler) SendResetOtp(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.SendResetOTP(r.Context(), req.Email); err != nil {
		h.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Message: "OTP sent to your email"})
}

// ResendResetOtp handles POST /resend-reset-otp
func (h *Handler) ResendResetOtp(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.ResendResetOTP(r.Context(), req.Email); err != nil {
		h.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Message: "New OTP sent successfully"})
}

// ResetPassword handles POST /reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.Otp, req.NewPassword); err != nil {
		h.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Message: "Password reset successfully"})
}

// GetUserData handles GET /data (auth required)
func (h *Handler) GetUserData(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{
		Success: true,
		Message: "User data",
		Data: UserData{
			Name:              user.Name,
			IsAccountVerified: user.IsVerified,
		},
	})
}

// respondError maps service errors to a stable status and message. Store
// and infrastructure failures are logged with context and surfaced as a
// generic server error.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Server error. Please try again later."

	switch {
	case errors.Is(err, account.ErrMissingFields):
		status = http.StatusBadRequest
		message = "Missing required fields"
	case errors.Is(err, account.ErrEmailTaken):
		status = http.StatusConflict
		message = "User already exists with this email address"
	case errors.Is(err, account.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid email or password"
	case errors.Is(err, account.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found"
	case errors.Is(err, account.ErrAlreadyVerified):
		status = http.StatusBadRequest
		message = "Account already verified"
	case errors.Is(err, account.ErrOTPExpired):
		status = http.StatusBadRequest
		message = "OTP expired"
	case errors.Is(err, account.ErrOTPMismatch):
		status = http.StatusUnauthorized
		message = "Invalid OTP"
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	render.Status(r, status)
	render.JSON(w, r, Response{Success: false, Message: message})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Error("Failed to decode request body", "path", r.URL.Path, "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{Success: false, Message: "Invalid request body"})
		return false
	}
	return true
}

// callerID extracts the authenticated user id injected by the auth gate.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := authn.UserID(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, Response{Success: false, Message: "Not authorized. Please log in again."})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(id)
	if err != nil {
		slog.Error("Invalid user id in session token", "err", err)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, Response{Success: false, Message: "Not authorized. Please log in again."})
		return uuid.Nil, false
	}
	return userID, true
}
