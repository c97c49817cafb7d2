package app

import (
	"log/slog"
	"net/http"

	"github.com/Vishwas132/university-admin-panel/internal/admin"
	"github.com/Vishwas132/university-admin-panel/internal/auth"
	"github.com/Vishwas132/university-admin-panel/internal/health"
	"github.com/Vishwas132/university-admin-panel/internal/httputil"
	"github.com/Vishwas132/university-admin-panel/internal/middleware"
	"github.com/Vishwas132/university-admin-panel/internal/student"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health   *health.Handler
	Auth     *auth.Handler
	Admin    *admin.Handler
	Student  *student.Handler
	Verifier middleware.TokenVerifier
}

func NewRouter(h Handlers, corsOrigins []string, logger *slog.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.CORS(corsOrigins))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondWithMessage(w, http.StatusOK, "College Admin Panel API")
	})

	// Public endpoints
	h.Health.RegisterRoutes(router)
	h.Auth.RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(h.Verifier, logger))
		h.Admin.RegisterRoutes(r)
		h.Student.RegisterRoutes(r)
	})

	return router
}
