package admin

import (
	"log/slog"
	"net/http"

	"github.com/Vishwas132/university-admin-panel/internal/apperr"
	"github.com/Vishwas132/university-admin-panel/internal/httputil"
	"github.com/Vishwas132/university-admin-panel/internal/middleware"
	"github.com/Vishwas132/university-admin-panel/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service   *Service
	validate  *validation.Validator
	errors    *httputil.ErrorWriter
	logger    *slog.Logger
	maxUpload int64
}

func NewHandler(service *Service, errors *httputil.ErrorWriter, logger *slog.Logger, maxUpload int64) *Handler {
	return &Handler{
		service:   service,
		validate:  validation.New(),
		errors:    errors,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

// RegisterRoutes mounts the admin routes. router must already authenticate
// requests.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminOnly)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Put("/change-password", h.ChangePassword)
		r.Post("/profile/picture", h.UploadPicture)
		r.Get("/profile/picture", h.GetPicture)
	})
}

func (h *Handler) currentID(r *http.Request) (uuid.UUID, error) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return uuid.Nil, apperr.Authentication("Not authorized")
	}
	id, err := uuid.Parse(identity.ID)
	if err != nil {
		return uuid.Nil, apperr.Authentication("Not authorized")
	}
	return id, nil
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := h.currentID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	admin, err := h.service.Profile(r.Context(), id)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, admin.Profile())
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := h.currentID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	admin, err := h.service.UpdateProfile(r.Context(), id, req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, admin.Profile())
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := h.currentID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req ChangePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), id, req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "Password updated successfully")
}

func (h *Handler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	id, err := h.currentID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	upload, err := httputil.ReadImage(w, r, "profilePicture", h.maxUpload)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	if err := h.service.UploadPicture(r.Context(), id, upload.Data, upload.ContentType); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "admin profile picture updated", "admin_id", id, "size", upload.Size)
	httputil.RespondWithJSON(w, http.StatusOK, PictureResponse{
		Message: "Profile picture updated successfully",
		ProfilePicture: PictureInfo{
			ContentType: upload.ContentType,
			Size:        upload.Size,
		},
	})
}

func (h *Handler) GetPicture(w http.ResponseWriter, r *http.Request) {
	id, err := h.currentID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	data, contentType, err := h.service.Picture(r.Context(), id)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithBytes(w, contentType, data)
}
