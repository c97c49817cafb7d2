package student

import (
	"log/slog"
	"net/http"
	"strconv"

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

// RegisterRoutes mounts the student routes. router must already authenticate
// requests.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/students", func(r chi.Router) {
		r.With(middleware.AdminOnly).Get("/", h.List)
		r.With(middleware.AdminOnly).Post("/", h.Create)

		r.With(middleware.StudentOnly).Get("/profile", h.GetOwnProfile)
		r.With(middleware.StudentOnly).Put("/profile", h.UpdateOwnProfile)

		r.With(middleware.SelfOrAdmin("id")).Get("/{id}", h.Get)
		r.With(middleware.SelfOrAdmin("id")).Put("/{id}", h.Update)
		r.With(middleware.AdminOnly).Delete("/{id}", h.Delete)

		r.With(middleware.SelfOrAdmin("id")).Post("/{id}/profile-image", h.UploadImage)
		r.Get("/{id}/profile-image", h.GetImage)
	})
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid student ID")
	}
	return id, nil
}

func selfID(r *http.Request) (uuid.UUID, error) {
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

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
		Search: r.URL.Query().Get("search"),
	}

	resp, err := h.service.List(r.Context(), params)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	student, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, student)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	h.get(w, r, id)
}

func (h *Handler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	id, err := selfID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	h.get(w, r, id)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	student, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	h.update(w, r, id)
}

func (h *Handler) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	id, err := selfID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	h.update(w, r, id)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req UpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	student, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "Student deleted successfully")
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	upload, err := httputil.ReadImage(w, r, "profileImage", h.maxUpload)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	if err := h.service.UploadImage(r.Context(), id, upload.Data, upload.ContentType); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "student profile image updated", "student_id", id, "size", upload.Size)
	httputil.RespondWithJSON(w, http.StatusOK, ImageResponse{
		Message: "Profile image updated successfully",
		ProfileImage: ImageInfo{
			ContentType: upload.ContentType,
			Size:        upload.Size,
		},
	})
}

func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	data, contentType, err := h.service.Image(r.Context(), id)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	httputil.RespondWithBytes(w, contentType, data)
}
