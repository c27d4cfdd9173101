package directory

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"
)

// Handler contains dependencies for handling directory endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

// NewHandler constructs a new Handler.
func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// AddRequest is the body of POST /users.
type AddRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r AddRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// List writes every entry as a JSON array.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.logger.Errorw("list directory failed", "err", err)
		writeText(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(users)
}

// Add stores one entry.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid add payload", "err", err)
		writeText(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := req.Validate(); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.svc.Add(r.Context(), req.Name, req.Email)
	if err != nil {
		h.logger.Errorw("add directory user failed", "err", err)
		writeText(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.logger.Debugw("directory user added", "id", u.ID)
	writeText(w, http.StatusOK, "User added successfully")
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
