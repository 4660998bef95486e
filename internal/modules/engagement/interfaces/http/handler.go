package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/soundrift/soundrift/internal/gateway/middleware"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	"github.com/soundrift/soundrift/internal/modules/engagement/application"
	"github.com/soundrift/soundrift/internal/modules/engagement/domain"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/soundrift/soundrift/internal/shared/utils"
)

type EngagementHandler struct {
	service *application.LedgerService
}

func NewEngagementHandler(service *application.LedgerService) *EngagementHandler {
	return &EngagementHandler{service: service}
}

func (h *EngagementHandler) LikeSong(w http.ResponseWriter, r *http.Request) {
	userID, songID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}

	result, err := h.service.LikeSong(r.Context(), userID, songID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *EngagementHandler) UnlikeSong(w http.ResponseWriter, r *http.Request) {
	userID, songID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}

	result, err := h.service.UnlikeSong(r.Context(), userID, songID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// RecordPlay accepts both anonymous and authenticated callers; the route uses
// flexible auth so an expired token still counts the play.
func (h *EngagementHandler) RecordPlay(w http.ResponseWriter, r *http.Request) {
	songID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid song id", nil)
		return
	}

	var userID *uuid.UUID
	if id, ok := middleware.CallerID(r.Context()); ok {
		userID = &id
	}

	playCount, err := h.service.RecordPlay(r.Context(), songID, userID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"play_count": playCount})
}

func (h *EngagementHandler) FavoriteSong(w http.ResponseWriter, r *http.Request) {
	userID, songID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	added, err := h.service.FavoriteSong(r.Context(), userID, songID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"favorited": true, "changed": added})
}

func (h *EngagementHandler) UnfavoriteSong(w http.ResponseWriter, r *http.Request) {
	userID, songID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	removed, err := h.service.UnfavoriteSong(r.Context(), userID, songID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"favorited": false, "changed": removed})
}

func (h *EngagementHandler) FavoriteAlbum(w http.ResponseWriter, r *http.Request) {
	userID, albumID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	added, err := h.service.FavoriteAlbum(r.Context(), userID, albumID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"favorited": true, "changed": added})
}

func (h *EngagementHandler) UnfavoriteAlbum(w http.ResponseWriter, r *http.Request) {
	userID, albumID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	removed, err := h.service.UnfavoriteAlbum(r.Context(), userID, albumID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"favorited": false, "changed": removed})
}

func (h *EngagementHandler) FollowArtist(w http.ResponseWriter, r *http.Request) {
	userID, artistID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	added, err := h.service.FollowArtist(r.Context(), userID, artistID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"following": true, "changed": added})
}

func (h *EngagementHandler) UnfollowArtist(w http.ResponseWriter, r *http.Request) {
	userID, artistID, ok := h.callerAndTarget(w, r)
	if !ok {
		return
	}
	removed, err := h.service.UnfollowArtist(r.Context(), userID, artistID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"following": false, "changed": removed})
}

func (h *EngagementHandler) GetFavoriteSongs(w http.ResponseWriter, r *http.Request) {
	userID, access, ok := h.callerAccess(w, r)
	if !ok {
		return
	}
	songs, err := h.service.GetFavoriteSongs(r.Context(), userID, access, queryLimit(r))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, songs)
}

func (h *EngagementHandler) GetFavoriteAlbums(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	albums, err := h.service.GetFavoriteAlbums(r.Context(), userID, queryLimit(r))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, albums)
}

func (h *EngagementHandler) GetRecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	userID, access, ok := h.callerAccess(w, r)
	if !ok {
		return
	}
	songs, err := h.service.GetRecentlyPlayed(r.Context(), userID, access, queryLimit(r))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, songs)
}

func (h *EngagementHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	refs, err := h.service.GetFollowing(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, refs)
}

func (h *EngagementHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	artistID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid artist id", nil)
		return
	}
	refs, err := h.service.GetFollowers(r.Context(), artistID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, refs)
}

func (h *EngagementHandler) callerAndTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, uuid.Nil, false
	}
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, targetID, true
}

func (h *EngagementHandler) callerAccess(w http.ResponseWriter, r *http.Request) (uuid.UUID, catalog.Access, bool) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, catalog.Access{}, false
	}
	role, _ := middleware.CallerRole(r.Context())
	return userID, catalog.ForUser(userID, role), true
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSongNotFound):
		utils.WriteError(w, http.StatusNotFound, "song not found", nil)
	case errors.Is(err, domain.ErrAlbumNotFound):
		utils.WriteError(w, http.StatusNotFound, "album not found", nil)
	case errors.Is(err, domain.ErrArtistNotFound), errors.Is(err, identity.ErrUserNotFound):
		utils.WriteError(w, http.StatusNotFound, "artist not found", nil)
	case errors.Is(err, domain.ErrSelfFollow):
		utils.WriteError(w, http.StatusBadRequest, "cannot follow yourself", nil)
	case errors.Is(err, domain.ErrNotAnArtist):
		utils.WriteError(w, http.StatusBadRequest, "target is not an artist", nil)
	default:
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
