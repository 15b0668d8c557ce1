package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"streamgate/internal/cache"
	"streamgate/internal/media/models"
	pkgerrors "streamgate/pkg/errors"
	"streamgate/pkg/platform/httputil"
	authmw "streamgate/pkg/platform/middleware/auth"
	"streamgate/pkg/requestcontext"
)

// CatalogService computes the payloads the media endpoints serve on a cache
// miss.
type CatalogService interface {
	Trending(ctx context.Context, limit int) ([]models.Item, error)
	Recommendations(ctx context.Context, userID string, limit int) ([]models.Item, error)
	Search(ctx context.Context, query string) (models.SearchResult, error)
	Channels(ctx context.Context, group string) ([]models.Channel, error)
}

// MediaHandler serves the catalog endpoints through the cache manager. Every
// read goes through a strategy key so repeated requests within a TTL never hit
// the catalog service twice.
type MediaHandler struct {
	logger  *slog.Logger
	catalog CatalogService
	caches  *cache.Manager
}

func NewMediaHandler(catalog CatalogService, caches *cache.Manager, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		logger:  logger,
		catalog: catalog,
		caches:  caches,
	}
}

// Register mounts the media routes. Recommendations require an authenticated
// user; the rest are public.
func (h *MediaHandler) Register(r chi.Router) {
	r.Get("/api/media/trending", h.handleTrending)
	r.Get("/api/search", h.handleSearch)
	r.Get("/api/iptv/channels", h.handleChannels)

	r.Group(func(protected chi.Router) {
		protected.Use(authmw.RequireAuth(h.logger))
		protected.Get("/api/media/recommendations", h.handleRecommendations)
	})
}

func (h *MediaHandler) handleTrending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := queryInt(r, "limit", 10)

	items, err := cache.Fetch(ctx, h.caches, cache.StrategyTrending, []string{strconv.Itoa(limit)},
		func(ctx context.Context) ([]models.Item, error) {
			return h.catalog.Trending(ctx, limit)
		})
	if err != nil {
		h.logger.ErrorContext(ctx, "trending lookup failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *MediaHandler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	limit := queryInt(r, "limit", 5)

	items, err := cache.Fetch(ctx, h.caches, cache.StrategyRecommendations, []string{userID, strconv.Itoa(limit)},
		func(ctx context.Context) ([]models.Item, error) {
			return h.catalog.Recommendations(ctx, userID, limit)
		})
	if err != nil {
		h.logger.ErrorContext(ctx, "recommendations lookup failed",
			"error", err,
			"user_id", userID,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *MediaHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteError(w, pkgerrors.New(pkgerrors.CodeInvalidInput, "query parameter q is required"))
		return
	}

	result, err := cache.Fetch(ctx, h.caches, cache.StrategySearch, []string{query},
		func(ctx context.Context) (models.SearchResult, error) {
			return h.catalog.Search(ctx, query)
		})
	if err != nil {
		h.logger.WarnContext(ctx, "search failed",
			"error", err,
			"query", query,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *MediaHandler) handleChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	group := r.URL.Query().Get("group")

	channels, err := cache.Fetch(ctx, h.caches, cache.StrategyChannel, []string{group},
		func(ctx context.Context) ([]models.Channel, error) {
			return h.catalog.Channels(ctx, group)
		})
	if err != nil {
		h.logger.ErrorContext(ctx, "channel listing failed",
			"error", err,
			"group", group,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, channels)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
