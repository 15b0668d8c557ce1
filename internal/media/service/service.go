// Package service computes the catalog payloads behind the media endpoints.
// The data is a static in-process catalog; the service exists so the HTTP
// layer has a real compute function to wrap in cache lookups.
package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"streamgate/internal/media/models"
	"streamgate/pkg/errors"
)

type Service struct {
	logger  *slog.Logger
	catalog []models.Item
	streams []models.Channel
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(opts ...Option) *Service {
	svc := &Service{
		logger:  slog.Default(),
		catalog: seedCatalog(),
		streams: seedChannels(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Trending returns the catalog ordered by daily views, capped at limit.
func (s *Service) Trending(ctx context.Context, limit int) ([]models.Item, error) {
	if limit <= 0 {
		limit = 10
	}

	out := make([]models.Item, len(s.catalog))
	copy(out, s.catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].ViewsDay > out[j].ViewsDay })

	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}

	s.logger.DebugContext(ctx, "computed trending", "count", len(out))
	return out, nil
}

// Recommendations returns a per-user slice of the catalog. Selection is a
// stable hash of the user ID so the same user always gets the same list.
func (s *Service) Recommendations(ctx context.Context, userID string, limit int) ([]models.Item, error) {
	if userID == "" {
		return nil, errors.New(errors.CodeInvalidInput, "user id is required")
	}
	if limit <= 0 {
		limit = 5
	}

	offset := int(fnv32(userID)) % len(s.catalog)
	out := make([]models.Item, 0, limit)
	for i := 0; i < len(s.catalog) && len(out) < limit; i++ {
		out = append(out, s.catalog[(offset+i)%len(s.catalog)])
	}

	s.logger.DebugContext(ctx, "computed recommendations", "user_id", userID, "count", len(out))
	return out, nil
}

// Search matches the query against titles and genres, case-insensitively.
func (s *Service) Search(ctx context.Context, query string) (models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return models.SearchResult{}, errors.New(errors.CodeInvalidInput, "query is required")
	}

	needle := strings.ToLower(query)
	result := models.SearchResult{Query: query}
	for _, item := range s.catalog {
		if strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Genre), needle) {
			result.Items = append(result.Items, item)
		}
	}
	result.Total = len(result.Items)

	s.logger.DebugContext(ctx, "computed search", "query", query, "total", result.Total)
	return result, nil
}

// Channels lists the live streams for a group, or all of them when group is
// empty.
func (s *Service) Channels(_ context.Context, group string) ([]models.Channel, error) {
	if group == "" {
		out := make([]models.Channel, len(s.streams))
		copy(out, s.streams)
		return out, nil
	}

	var out []models.Channel
	for _, ch := range s.streams {
		if strings.EqualFold(ch.Group, group) {
			out = append(out, ch)
		}
	}
	return out, nil
}

func fnv32(s string) uint32 {
	const prime = 16777619
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

func seedCatalog() []models.Item {
	return []models.Item{
		{ID: "m1", Title: "Orbit Decay", Genre: "scifi", ViewsDay: 48210},
		{ID: "m2", Title: "Harbor Lights", Genre: "drama", ViewsDay: 35110},
		{ID: "m3", Title: "Last Summit", Genre: "documentary", ViewsDay: 60950},
		{ID: "m4", Title: "Night Kitchen", Genre: "reality", ViewsDay: 28730},
		{ID: "m5", Title: "Signal Lost", Genre: "thriller", ViewsDay: 51440},
		{ID: "m6", Title: "Copper Creek", Genre: "western", ViewsDay: 12980},
		{ID: "m7", Title: "Glass Orchard", Genre: "drama", ViewsDay: 44510},
		{ID: "m8", Title: "Deep Current", Genre: "documentary", ViewsDay: 39020},
	}
}

func seedChannels() []models.Channel {
	return []models.Channel{
		{ID: "ch1", Name: "World News 24", Group: "news", Country: "US"},
		{ID: "ch2", Name: "Cinema One", Group: "movies", Country: "UK"},
		{ID: "ch3", Name: "Sport Arena", Group: "sports", Country: "DE"},
		{ID: "ch4", Name: "Kids Planet", Group: "kids", Country: "US"},
		{ID: "ch5", Name: "Nature HD", Group: "documentary", Country: "FR"},
	}
}
