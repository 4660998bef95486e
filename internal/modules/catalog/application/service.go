package application

import (
	"context"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/soundrift/soundrift/internal/modules/catalog/domain"
)

// Uploader is the slice of the file service the catalog needs.
type Uploader interface {
	UploadAudio(ctx context.Context, file io.Reader, filename string, size int64, folder string) (string, error)
	UploadImage(ctx context.Context, file io.Reader, filename string, size int64, folder string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// ReleaseNotifier is told about newly published public songs. Implemented by
// the notification module; failures there never fail the upload.
type ReleaseNotifier interface {
	SongPublished(ctx context.Context, song *domain.Song)
}

// TrendingInvalidator drops cached discovery results after a song mutation.
type TrendingInvalidator interface {
	InvalidateTrending(ctx context.Context)
}

// Upload is an inbound file: the bytes plus the metadata validation needs.
type Upload struct {
	File     io.Reader
	Filename string
	Size     int64
}

type CreateSongInput struct {
	Title         string
	Duration      int
	GenreTitle    string
	AlbumTitle    string
	ReleaseDate   time.Time
	Visibility    domain.Visibility
	LicensingInfo *string
	Audio         *Upload
}

type UpdateSongInput struct {
	Title         *string
	Duration      *int
	GenreTitle    string
	AlbumTitle    string
	ReleaseDate   *time.Time
	Visibility    *domain.Visibility
	LicensingInfo *string
}

type CatalogService struct {
	repo        domain.SongRepository
	files       Uploader
	notifier    ReleaseNotifier
	invalidator TrendingInvalidator
}

func NewCatalogService(repo domain.SongRepository, files Uploader, notifier ReleaseNotifier, invalidator TrendingInvalidator) *CatalogService {
	return &CatalogService{repo: repo, files: files, notifier: notifier, invalidator: invalidator}
}

func (s *CatalogService) invalidateTrending(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.InvalidateTrending(ctx)
	}
}

// CreateSong validates the upload, stores the audio in the blob store and
// only then persists the catalog row, so a failed upload leaves nothing
// behind. Only artists may create songs.
func (s *CatalogService) CreateSong(ctx context.Context, access domain.Access, in CreateSongInput) (*domain.Song, error) {
	if !access.IsArtist() {
		return nil, domain.ErrForbidden
	}
	if in.Title == "" {
		return nil, domain.ErrMissingTitle
	}
	if utf8.RuneCountInString(in.Title) > domain.SongTitleMaxLength {
		return nil, domain.ErrTitleTooLong
	}
	if in.Duration < 0 {
		return nil, domain.ErrBadDuration
	}
	if in.GenreTitle == "" {
		return nil, domain.ErrMissingGenre
	}
	if in.Audio == nil {
		return nil, domain.ErrMissingAudio
	}
	if in.Visibility == 0 {
		in.Visibility = domain.VisibilityPublic
	}
	if !in.Visibility.Valid() {
		return nil, domain.ErrBadVisibility
	}
	if in.ReleaseDate.IsZero() {
		in.ReleaseDate = time.Now()
	}

	audioURL, err := s.files.UploadAudio(ctx, in.Audio.File, in.Audio.Filename, in.Audio.Size, "songs")
	if err != nil {
		return nil, err
	}

	song := &domain.Song{
		UserID:        *access.UserID,
		Title:         in.Title,
		Duration:      in.Duration,
		ReleaseDate:   in.ReleaseDate,
		AudioURL:      audioURL,
		Visibility:    in.Visibility,
		LicensingInfo: in.LicensingInfo,
	}

	if err := s.repo.Create(ctx, song, in.GenreTitle, in.AlbumTitle); err != nil {
		// best effort: don't orphan the blob
		_ = s.files.Delete(ctx, audioURL)
		return nil, err
	}

	s.invalidateTrending(ctx)
	if s.notifier != nil && song.Visibility == domain.VisibilityPublic {
		s.notifier.SongPublished(ctx, song)
	}
	return song, nil
}

// GetSong applies the visibility policy; an invisible song reads as absent.
func (s *CatalogService) GetSong(ctx context.Context, access domain.Access, id uuid.UUID) (*domain.Song, error) {
	song, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanSee(song) {
		return nil, domain.ErrSongNotFound
	}
	return song, nil
}

func (s *CatalogService) UpdateSong(ctx context.Context, access domain.Access, id uuid.UUID, in UpdateSongInput) (*domain.Song, error) {
	song, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanModify(song.UserID) {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, domain.ErrMissingTitle
		}
		if utf8.RuneCountInString(*in.Title) > domain.SongTitleMaxLength {
			return nil, domain.ErrTitleTooLong
		}
		song.Title = *in.Title
	}
	if in.Duration != nil {
		if *in.Duration < 0 {
			return nil, domain.ErrBadDuration
		}
		song.Duration = *in.Duration
	}
	if in.ReleaseDate != nil {
		song.ReleaseDate = *in.ReleaseDate
	}
	if in.Visibility != nil {
		if !in.Visibility.Valid() {
			return nil, domain.ErrBadVisibility
		}
		song.Visibility = *in.Visibility
	}
	if in.LicensingInfo != nil {
		song.LicensingInfo = in.LicensingInfo
	}

	if err := s.repo.Update(ctx, song, in.GenreTitle, in.AlbumTitle); err != nil {
		return nil, err
	}
	s.invalidateTrending(ctx)
	return song, nil
}

// DeleteSong removes the song and its audio; ledger rows cascade in the store.
func (s *CatalogService) DeleteSong(ctx context.Context, access domain.Access, id uuid.UUID) error {
	song, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanModify(song.UserID) {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTrending(ctx)
	_ = s.files.Delete(ctx, song.AudioURL)
	return nil
}

func (s *CatalogService) GetUserSongs(ctx context.Context, access domain.Access, userID uuid.UUID, page int) ([]domain.Song, error) {
	limit := 20
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUserID(ctx, userID, access, limit, offset)
}

func (s *CatalogService) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	return s.repo.ListGenres(ctx)
}

func (s *CatalogService) ListAlbums(ctx context.Context, page int) ([]domain.Album, error) {
	limit := 20
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAlbums(ctx, limit, offset)
}

// UploadAlbumCover validates and stores a cover image for an album the caller
// owns.
func (s *CatalogService) UploadAlbumCover(ctx context.Context, access domain.Access, albumID uuid.UUID, cover Upload) (*domain.Album, error) {
	album, err := s.repo.GetAlbumByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album.UserID == nil || !access.CanModify(*album.UserID) {
		return nil, domain.ErrForbidden
	}

	url, err := s.files.UploadImage(ctx, cover.File, cover.Filename, cover.Size, "album_covers")
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAlbumCover(ctx, albumID, url); err != nil {
		return nil, err
	}
	album.CoverURL = &url
	return album, nil
}
