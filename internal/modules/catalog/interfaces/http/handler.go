package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/soundrift/soundrift/internal/gateway/middleware"
	"github.com/soundrift/soundrift/internal/modules/catalog/application"
	"github.com/soundrift/soundrift/internal/modules/catalog/domain"
	filestorage "github.com/soundrift/soundrift/internal/modules/filestorage/domain"
	"github.com/soundrift/soundrift/internal/shared/utils"
)

type CatalogHandler struct {
	service *application.CatalogService
}

func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type songMetadata struct {
	Title         string            `json:"title"`
	Duration      int               `json:"duration"`
	Genre         string            `json:"genre"`
	Album         string            `json:"album"`
	ReleaseDate   *time.Time        `json:"release_date"`
	Visibility    domain.Visibility `json:"visibility"`
	LicensingInfo *string           `json:"licensing_info"`
}

// CreateSong takes a multipart form: a "metadata" JSON part plus the "audio"
// file.
func (h *CatalogHandler) CreateSong(w http.ResponseWriter, r *http.Request) {
	access, ok := callerAccess(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, filestorage.MaxAudioSize+10<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "request too large or malformed", nil)
		return
	}

	var meta songMetadata
	if err := json.Unmarshal([]byte(r.FormValue("metadata")), &meta); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid metadata json", nil)
		return
	}

	in := application.CreateSongInput{
		Title:         meta.Title,
		Duration:      meta.Duration,
		GenreTitle:    meta.Genre,
		AlbumTitle:    meta.Album,
		Visibility:    meta.Visibility,
		LicensingInfo: meta.LicensingInfo,
	}
	if meta.ReleaseDate != nil {
		in.ReleaseDate = *meta.ReleaseDate
	}

	file, header, err := r.FormFile("audio")
	if err == nil {
		defer file.Close()
		in.Audio = &application.Upload{File: file, Filename: header.Filename, Size: header.Size}
	}

	song, err := h.service.CreateSong(r.Context(), access, in)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, song)
}

func (h *CatalogHandler) GetSong(w http.ResponseWriter, r *http.Request) {
	access, songID, ok := accessAndID(w, r)
	if !ok {
		return
	}

	song, err := h.service.GetSong(r.Context(), access, songID)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, song)
}

type updateSongRequest struct {
	Title         *string            `json:"title"`
	Duration      *int               `json:"duration"`
	Genre         string             `json:"genre"`
	Album         string             `json:"album"`
	ReleaseDate   *time.Time         `json:"release_date"`
	Visibility    *domain.Visibility `json:"visibility"`
	LicensingInfo *string            `json:"licensing_info"`
}

func (h *CatalogHandler) UpdateSong(w http.ResponseWriter, r *http.Request) {
	access, songID, ok := accessAndID(w, r)
	if !ok {
		return
	}

	var req updateSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	song, err := h.service.UpdateSong(r.Context(), access, songID, application.UpdateSongInput{
		Title:         req.Title,
		Duration:      req.Duration,
		GenreTitle:    req.Genre,
		AlbumTitle:    req.Album,
		ReleaseDate:   req.ReleaseDate,
		Visibility:    req.Visibility,
		LicensingInfo: req.LicensingInfo,
	})
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, song)
}

func (h *CatalogHandler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	access, songID, ok := accessAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSong(r.Context(), access, songID); err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUserSongs lists a user's songs as the caller is allowed to see them.
func (h *CatalogHandler) GetUserSongs(w http.ResponseWriter, r *http.Request) {
	access := flexibleAccess(r)
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	songs, err := h.service.GetUserSongs(r.Context(), access, userID, queryPage(r))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, songs)
}

func (h *CatalogHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.ListGenres(r.Context())
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, genres)
}

func (h *CatalogHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.service.ListAlbums(r.Context(), queryPage(r))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, albums)
}

func (h *CatalogHandler) UploadAlbumCover(w http.ResponseWriter, r *http.Request) {
	access, albumID, ok := accessAndID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, filestorage.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(filestorage.MaxImageSize); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "request too large or malformed", nil)
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "cover file is required", nil)
		return
	}
	defer file.Close()

	album, err := h.service.UploadAlbumCover(r.Context(), access, albumID, application.Upload{
		File:     file,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, album)
}

func callerAccess(w http.ResponseWriter, r *http.Request) (domain.Access, bool) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return domain.Access{}, false
	}
	role, _ := middleware.CallerRole(r.Context())
	return domain.ForUser(userID, role), true
}

func flexibleAccess(r *http.Request) domain.Access {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		return domain.Anonymous()
	}
	role, _ := middleware.CallerRole(r.Context())
	return domain.ForUser(userID, role)
}

func accessAndID(w http.ResponseWriter, r *http.Request) (domain.Access, uuid.UUID, bool) {
	access := flexibleAccess(r)
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return domain.Access{}, uuid.Nil, false
	}
	return access, id, true
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSongNotFound):
		utils.WriteError(w, http.StatusNotFound, "song not found", nil)
	case errors.Is(err, domain.ErrAlbumNotFound):
		utils.WriteError(w, http.StatusNotFound, "album not found", nil)
	case errors.Is(err, domain.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, domain.ErrMissingTitle),
		errors.Is(err, domain.ErrTitleTooLong),
		errors.Is(err, domain.ErrMissingGenre),
		errors.Is(err, domain.ErrMissingAudio),
		errors.Is(err, domain.ErrBadDuration),
		errors.Is(err, domain.ErrBadVisibility):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, filestorage.ErrFileTooLarge),
		errors.Is(err, filestorage.ErrEmptyFile),
		errors.Is(err, filestorage.ErrBadFileType):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, filestorage.ErrUploadFailed):
		utils.WriteError(w, http.StatusBadGateway, "file storage unavailable", nil)
	default:
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
