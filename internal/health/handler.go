package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/httputil"
	"github.com/Vishwas132/university-admin-panel/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Pinger is satisfied by *bun.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db      Pinger
	metrics *metrics.DependencyMetrics
	logger  *slog.Logger
}

func NewHandler(db Pinger, m *metrics.DependencyMetrics, logger *slog.Logger) *Handler {
	return &Handler{db: db, metrics: m, logger: logger}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type Response struct {
	Status string `json:"status"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, Response{Status: "ok"})
}

// Ready reports whether the database answers within two seconds.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		start := time.Now()
		err := h.db.PingContext(ctx)
		h.metrics.RecordCheck(r.Context(), "postgres", time.Since(start), err)
		if err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
			httputil.RespondWithJSON(w, http.StatusServiceUnavailable, Response{Status: "unavailable"})
			return
		}
	}
	httputil.RespondWithJSON(w, http.StatusOK, Response{Status: "ready"})
}
