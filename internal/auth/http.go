package auth

import (
	"log/slog"
	"net/http"

	"github.com/Vishwas132/university-admin-panel/internal/httputil"
	"github.com/Vishwas132/university-admin-panel/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service  *Service
	validate *validation.Validator
	errors   *httputil.ErrorWriter
	logger   *slog.Logger
}

func NewHandler(service *Service, errors *httputil.ErrorWriter, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validation.New(),
		errors:   errors,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/auth", func(r chi.Router) {
		r.Post("/admin/register", h.Register)
		r.Post("/admin/login", h.Login)
		r.Post("/student/login", h.StudentLogin)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Put("/reset-password", h.ResetPassword)
	})
}

// decode reads and validates the JSON body into dst, writing the error
// response itself when that fails.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		h.errors.Write(w, r, err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.errors.Write(w, r, err)
		return false
	}
	return true
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.StudentLogin(r.Context(), req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.ForgotPassword(r.Context(), req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "Password reset successful")
}
