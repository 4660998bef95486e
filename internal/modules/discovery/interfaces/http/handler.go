package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/soundrift/soundrift/internal/gateway/middleware"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	"github.com/soundrift/soundrift/internal/modules/discovery/application"
	"github.com/soundrift/soundrift/internal/modules/discovery/domain"
	"github.com/soundrift/soundrift/internal/modules/discovery/infrastructure/cache"
	"github.com/soundrift/soundrift/internal/shared/utils"
)

type DiscoveryHandler struct {
	service *application.DiscoveryService
	cache   *cache.TrendingCache
}

func NewDiscoveryHandler(service *application.DiscoveryService, trendingCache *cache.TrendingCache) *DiscoveryHandler {
	return &DiscoveryHandler{service: service, cache: trendingCache}
}

// Trending serves anonymous requests from the Redis cache when possible;
// per-user visibility makes authenticated responses uncacheable.
func (h *DiscoveryHandler) Trending(w http.ResponseWriter, r *http.Request) {
	access := accessFromContext(r)

	window, err := domain.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	cacheable := !access.Authenticated()
	if cacheable {
		if songs, hit := h.cache.Get(r.Context(), window, limit); hit {
			utils.WriteJSON(w, http.StatusOK, songs)
			return
		}
	}

	songs, err := h.service.Trending(r.Context(), access, window, limit)
	if err != nil {
		writeDiscoveryError(w, err)
		return
	}
	if cacheable {
		h.cache.Set(r.Context(), window, limit, songs)
	}
	utils.WriteJSON(w, http.StatusOK, songs)
}

func (h *DiscoveryHandler) Search(w http.ResponseWriter, r *http.Request) {
	access := accessFromContext(r)

	searchType, err := domain.ParseSearchType(r.URL.Query().Get("type"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	results, err := h.service.Search(r.Context(), access, r.URL.Query().Get("q"), searchType)
	if err != nil {
		writeDiscoveryError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, results)
}

func (h *DiscoveryHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	access := accessFromContext(r)
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	songs, err := h.service.Recommendations(r.Context(), access, limit)
	if err != nil {
		writeDiscoveryError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, songs)
}

func (h *DiscoveryHandler) Random(w http.ResponseWriter, r *http.Request) {
	access := accessFromContext(r)
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	songs, err := h.service.Random(r.Context(), access, limit)
	if err != nil {
		writeDiscoveryError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, songs)
}

func (h *DiscoveryHandler) ListSongs(w http.ResponseWriter, r *http.Request) {
	access := accessFromContext(r)
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.SongFilter{
		GenreTitle: q.Get("genre"),
		ArtistName: q.Get("artist"),
		AlbumTitle: q.Get("album"),
	}
	var err error
	if filter.From, err = parseDate(q.Get("from")); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid from date", err)
		return
	}
	if filter.To, err = parseDate(q.Get("to")); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid to date", err)
		return
	}

	songs, err := h.service.ListSongs(r.Context(), access, filter, limit)
	if err != nil {
		writeDiscoveryError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, songs)
}

func accessFromContext(r *http.Request) catalog.Access {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		return catalog.Anonymous()
	}
	role, _ := middleware.CallerRole(r.Context())
	return catalog.ForUser(userID, role)
}

// parseLimit rejects garbage instead of defaulting it; 0 means "unset" and
// lets the service apply its default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		utils.WriteError(w, http.StatusBadRequest, domain.ErrBadLimit.Error(), nil)
		return 0, false
	}
	return limit, true
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func writeDiscoveryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadLimit),
		errors.Is(err, domain.ErrBadWindow),
		errors.Is(err, domain.ErrBadSearchType),
		errors.Is(err, domain.ErrEmptyQuery):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
