package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-auth-go/internal/token"
)

// Response bodies.
const (
	msgRegistered         = "User registered successfully"
	msgResetSent          = "Password reset code sent"
	msgEmailExists        = "Email already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgEmailNotFound      = "Email does not exist"
	msgEmailFailed        = "Failed to send email"
	msgInvalidPayload     = "invalid payload"
	msgInternal           = "internal server error"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// Handler exposes HTTP endpoints for the account flows.
type Handler struct {
	svc    *UserService
	tokens TokenParser
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, tokens TokenParser, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// AuthRequest is the body of signup and login.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// validateSignup bounds the password to what bcrypt accepts.
func (r AuthRequest) validateSignup() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	)
}

// validateLogin only checks presence. Failures answer like bad credentials.
func (r AuthRequest) validateLogin() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// ForgotPasswordRequest is the body of forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// LoginResponse carries the signed token.
type LoginResponse struct {
	Token string `json:"token"`
}

// MeResponse describes the caller's token.
type MeResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		h.writeText(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	if err := req.validateSignup(); err != nil {
		h.writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.SignUp(r.Context(), req.Email, req.Password); err != nil {
		h.writeError(w, "signup failed", err)
		return
	}
	h.writeText(w, http.StatusOK, msgRegistered)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeText(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	if err := req.validateLogin(); err != nil {
		h.writeText(w, http.StatusBadRequest, msgInvalidCredentials)
		return
	}
	tok, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, "login failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, LoginResponse{Token: tok})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid forgot-password payload", "err", err)
		h.writeText(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeError(w, "forgot-password failed", err)
		return
	}
	h.writeText(w, http.StatusOK, msgResetSent)
}

// Me echoes the claims of a valid bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if len(auth) < len("bearer ") || !strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		h.writeText(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := h.tokens.Parse(strings.TrimSpace(auth[len("bearer "):]))
	if err != nil {
		h.logger.Debugw("rejected token", "err", err)
		h.writeText(w, http.StatusUnauthorized, "invalid token")
		return
	}
	h.writeJSON(w, http.StatusOK, MeResponse{Email: claims.Email, ExpiresAt: claims.ExpiresAt.Time.UTC()})
}

// writeError maps service errors to status codes. Domain outcomes are 400,
// a failed email is 502 and everything else is 500.
func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		h.writeText(w, http.StatusBadRequest, msgEmailExists)
		return
	case errors.Is(err, ErrBadCredentials):
		h.writeText(w, http.StatusBadRequest, msgInvalidCredentials)
		return
	case errors.Is(err, ErrUserNotFound):
		h.writeText(w, http.StatusBadRequest, msgEmailNotFound)
		return
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		h.logger.Errorw(msg, "err", oopsErr.Error(), "code", oopsErr.Code(), "context", oopsErr.Context())
		if oopsErr.Code() == CodeNotifyFailed {
			h.writeText(w, http.StatusBadGateway, msgEmailFailed)
			return
		}
	} else {
		h.logger.Errorw(msg, "err", err)
	}
	h.writeText(w, http.StatusInternalServerError, msgInternal)
}

func (h *Handler) writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
