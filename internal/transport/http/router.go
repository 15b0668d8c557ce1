// Package httptransport assembles the HTTP surface: middleware chain, media
// endpoints, health, metrics and the admin mount. Handlers stay thin and
// delegate to domain services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"streamgate/internal/cache"
	rladmin "streamgate/internal/ratelimit/admin"
	rlmiddleware "streamgate/internal/ratelimit/middleware"
	"streamgate/pkg/platform/httputil"
	authmw "streamgate/pkg/platform/middleware/auth"
	"streamgate/pkg/platform/middleware/metadata"
	"streamgate/pkg/platform/middleware/request"
	"streamgate/pkg/platform/middleware/requesttime"
)

// HealthChecker reports backing-store reachability for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps collects everything the router mounts. TokenValidator and Health are
// optional; without a validator the service runs anonymous-only, without a
// checker the health endpoint reports process liveness alone.
type Deps struct {
	Logger         *slog.Logger
	Media          *MediaHandler
	Admission      *rlmiddleware.Middleware
	RateLimitAdmin *rladmin.Handler
	CacheAdmin     *CacheAdminHandler
	TokenValidator authmw.TokenValidator
	Health         HealthChecker
}

// NewRouter wires the full middleware chain. Order matters: identity must be
// resolved before admission so authenticated callers are counted under their
// user key rather than their IP.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	if deps.TokenValidator != nil {
		r.Use(authmw.Identity(deps.TokenValidator, deps.Logger))
	}
	r.Use(deps.Admission.Admit)

	r.Get("/api/health", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	deps.Media.Register(r)

	r.Route("/api/admin", func(admin chi.Router) {
		admin.Use(authmw.RequireAuth(deps.Logger))
		admin.Mount("/ratelimit", deps.RateLimitAdmin.Routes())
		admin.Mount("/cache", deps.CacheAdmin.Routes())
	})

	return r
}

func handleHealth(check HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"store":  "unreachable",
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// CacheAdminHandler exposes cache statistics and strategy invalidation.
type CacheAdminHandler struct {
	manager *cache.Manager
}

func NewCacheAdminHandler(manager *cache.Manager) *CacheAdminHandler {
	return &CacheAdminHandler{manager: manager}
}

func (h *CacheAdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", h.handleStats)
	r.Delete("/stats", h.handleResetStats)
	r.Delete("/strategies/{strategy}", h.handleInvalidate)
	return r
}

func (h *CacheAdminHandler) handleStats(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.manager.Cache().Stats())
}

func (h *CacheAdminHandler) handleResetStats(w http.ResponseWriter, _ *http.Request) {
	h.manager.Cache().ResetStats()
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *CacheAdminHandler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	strategy := cache.Strategy(chi.URLParam(r, "strategy"))
	removed := h.manager.Invalidate(r.Context(), strategy)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"strategy": strategy,
		"removed":  removed,
	})
}
