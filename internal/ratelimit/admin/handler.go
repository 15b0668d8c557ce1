package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"streamgate/internal/ratelimit/models"
	"streamgate/pkg/platform/httputil"
)

// Handler exposes the admin service over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the admin endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/config", h.handleConfig)
	r.Get("/counters", h.handleCounter)
	r.Delete("/counters", h.handleReset)
	return r
}

func (h *Handler) handleConfig(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.ConfigSnapshot())
}

type counterResponse struct {
	RouteClass models.RouteClass `json:"route_class"`
	ClientKey  string            `json:"client_key"`
	Count      int               `json:"count"`
}

func (h *Handler) handleCounter(w http.ResponseWriter, r *http.Request) {
	class := models.RouteClass(r.URL.Query().Get("class"))
	clientKey := r.URL.Query().Get("client")

	count, err := h.service.CurrentCount(r.Context(), class, clientKey)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, counterResponse{
		RouteClass: class,
		ClientKey:  clientKey,
		Count:      count,
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	class := models.RouteClass(r.URL.Query().Get("class"))
	clientKey := r.URL.Query().Get("client")

	if err := h.service.ResetClient(r.Context(), class, clientKey); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
