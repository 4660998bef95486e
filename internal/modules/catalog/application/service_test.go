package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/soundrift/soundrift/internal/modules/catalog/domain"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSongRepo struct {
	createFn  func(context.Context, *domain.Song, string, string) error
	getByIDFn func(context.Context, uuid.UUID) (*domain.Song, error)
	updateFn  func(context.Context, *domain.Song, string, string) error
	deleteFn  func(context.Context, uuid.UUID) error
}

func (m mockSongRepo) Create(ctx context.Context, s *domain.Song, g, a string) error {
	return m.createFn(ctx, s, g, a)
}
func (m mockSongRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Song, error) {
	return m.getByIDFn(ctx, id)
}
func (m mockSongRepo) Update(ctx context.Context, s *domain.Song, g, a string) error {
	return m.updateFn(ctx, s, g, a)
}
func (m mockSongRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.deleteFn(ctx, id) }
func (m mockSongRepo) ListByUserID(context.Context, uuid.UUID, domain.Access, int, int) ([]domain.Song, error) {
	return nil, nil
}
func (m mockSongRepo) ResolveOrCreateGenre(context.Context, string, uuid.UUID) (*domain.Genre, error) {
	return nil, nil
}
func (m mockSongRepo) ResolveOrCreateAlbum(context.Context, string, uuid.UUID) (*domain.Album, error) {
	return nil, nil
}
func (m mockSongRepo) GetAlbumByID(context.Context, uuid.UUID) (*domain.Album, error) {
	return nil, nil
}
func (m mockSongRepo) SetAlbumCover(context.Context, uuid.UUID, string) error { return nil }
func (m mockSongRepo) ListGenres(context.Context) ([]domain.Genre, error)     { return nil, nil }
func (m mockSongRepo) ListAlbums(context.Context, int, int) ([]domain.Album, error) {
	return nil, nil
}

type mockUploader struct {
	uploadAudioFn func(context.Context, io.Reader, string, int64, string) (string, error)
	deleted       []string
}

func (m *mockUploader) UploadAudio(ctx context.Context, f io.Reader, name string, size int64, folder string) (string, error) {
	return m.uploadAudioFn(ctx, f, name, size, folder)
}
func (m *mockUploader) UploadImage(context.Context, io.Reader, string, int64, string) (string, error) {
	return "http://files/img.jpg", nil
}
func (m *mockUploader) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

func artistAccess() domain.Access {
	return domain.ForUser(uuid.New(), identity.RoleArtist)
}

func validInput() CreateSongInput {
	return CreateSongInput{
		Title:      "Night Drive",
		Duration:   215,
		GenreTitle: "synthwave",
		Audio:      &Upload{File: strings.NewReader("audio"), Filename: "track.mp3", Size: 5},
	}
}

func TestCreateSong_ListenerForbidden(t *testing.T) {
	svc := NewCatalogService(mockSongRepo{}, &mockUploader{}, nil, nil)
	access := domain.ForUser(uuid.New(), identity.RoleListener)

	_, err := svc.CreateSong(context.Background(), access, validInput())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateSong_Validation(t *testing.T) {
	svc := NewCatalogService(mockSongRepo{}, &mockUploader{}, nil, nil)
	access := artistAccess()
	ctx := context.Background()

	in := validInput()
	in.Title = ""
	_, err := svc.CreateSong(ctx, access, in)
	assert.ErrorIs(t, err, domain.ErrMissingTitle)

	in = validInput()
	in.Title = strings.Repeat("x", domain.SongTitleMaxLength+1)
	_, err = svc.CreateSong(ctx, access, in)
	assert.ErrorIs(t, err, domain.ErrTitleTooLong)

	in = validInput()
	in.Duration = -1
	_, err = svc.CreateSong(ctx, access, in)
	assert.ErrorIs(t, err, domain.ErrBadDuration)

	in = validInput()
	in.GenreTitle = ""
	_, err = svc.CreateSong(ctx, access, in)
	assert.ErrorIs(t, err, domain.ErrMissingGenre)

	in = validInput()
	in.Audio = nil
	_, err = svc.CreateSong(ctx, access, in)
	assert.ErrorIs(t, err, domain.ErrMissingAudio)

	in = validInput()
	in.Visibility = 9
	_, err = svc.CreateSong(ctx, access, in)
	assert.ErrorIs(t, err, domain.ErrBadVisibility)
}

func TestCreateSong_TitleLimitCountsRunes(t *testing.T) {
	repo := mockSongRepo{
		createFn: func(context.Context, *domain.Song, string, string) error { return nil },
	}
	uploader := &mockUploader{
		uploadAudioFn: func(context.Context, io.Reader, string, int64, string) (string, error) {
			return "http://files/track.mp3", nil
		},
	}
	svc := NewCatalogService(repo, uploader, nil, nil)
	ctx := context.Background()

	// 100 two-byte characters: within the limit even though it is 200 bytes.
	in := validInput()
	in.Title = strings.Repeat("я", domain.SongTitleMaxLength)
	song, err := svc.CreateSong(ctx, artistAccess(), in)
	require.NoError(t, err)
	assert.Equal(t, in.Title, song.Title)

	in = validInput()
	in.Title = strings.Repeat("я", domain.SongTitleMaxLength+1)
	_, err = svc.CreateSong(ctx, artistAccess(), in)
	assert.ErrorIs(t, err, domain.ErrTitleTooLong)
}

func TestCreateSong_UploadBeforePersist(t *testing.T) {
	access := artistAccess()
	uploaded := false
	files := &mockUploader{
		uploadAudioFn: func(context.Context, io.Reader, string, int64, string) (string, error) {
			uploaded = true
			return "http://files/track.mp3", nil
		},
	}
	repo := mockSongRepo{
		createFn: func(_ context.Context, s *domain.Song, genre, album string) error {
			require.True(t, uploaded, "persist must happen after upload")
			assert.Equal(t, "synthwave", genre)
			assert.Equal(t, "http://files/track.mp3", s.AudioURL)
			assert.Equal(t, domain.VisibilityPublic, s.Visibility)
			return nil
		},
	}
	svc := NewCatalogService(repo, files, nil, nil)

	song, err := svc.CreateSong(context.Background(), access, validInput())
	require.NoError(t, err)
	assert.Equal(t, *access.UserID, song.UserID)
}

func TestCreateSong_CleansUpBlobOnPersistFailure(t *testing.T) {
	files := &mockUploader{
		uploadAudioFn: func(context.Context, io.Reader, string, int64, string) (string, error) {
			return "http://files/track.mp3", nil
		},
	}
	repo := mockSongRepo{
		createFn: func(context.Context, *domain.Song, string, string) error {
			return errors.New("db down")
		},
	}
	svc := NewCatalogService(repo, files, nil, nil)

	_, err := svc.CreateSong(context.Background(), artistAccess(), validInput())
	require.Error(t, err)
	assert.Equal(t, []string{"http://files/track.mp3"}, files.deleted)
}

func TestGetSong_PrivateReadsAsAbsent(t *testing.T) {
	owner := uuid.New()
	song := &domain.Song{ID: uuid.New(), UserID: owner, Visibility: domain.VisibilityPrivate}
	repo := mockSongRepo{
		getByIDFn: func(context.Context, uuid.UUID) (*domain.Song, error) { return song, nil },
	}
	svc := NewCatalogService(repo, &mockUploader{}, nil, nil)

	// anonymous caller
	_, err := svc.GetSong(context.Background(), domain.Anonymous(), song.ID)
	assert.ErrorIs(t, err, domain.ErrSongNotFound)

	// another artist
	_, err = svc.GetSong(context.Background(), domain.ForUser(uuid.New(), identity.RoleArtist), song.ID)
	assert.ErrorIs(t, err, domain.ErrSongNotFound)

	// artist-role owner sees it
	got, err := svc.GetSong(context.Background(), domain.ForUser(owner, identity.RoleArtist), song.ID)
	require.NoError(t, err)
	assert.Equal(t, song.ID, got.ID)

	// listener-role owner does not
	_, err = svc.GetSong(context.Background(), domain.ForUser(owner, identity.RoleListener), song.ID)
	assert.ErrorIs(t, err, domain.ErrSongNotFound)
}

func TestDeleteSong_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	song := &domain.Song{ID: uuid.New(), UserID: owner, AudioURL: "http://files/track.mp3", Visibility: domain.VisibilityPublic}
	files := &mockUploader{}
	deleted := false
	repo := mockSongRepo{
		getByIDFn: func(context.Context, uuid.UUID) (*domain.Song, error) { return song, nil },
		deleteFn: func(context.Context, uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	svc := NewCatalogService(repo, files, nil, nil)

	err := svc.DeleteSong(context.Background(), domain.ForUser(uuid.New(), identity.RoleArtist), song.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.False(t, deleted)

	err = svc.DeleteSong(context.Background(), domain.ForUser(owner, identity.RoleArtist), song.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"http://files/track.mp3"}, files.deleted)
}

type recordingInvalidator struct{ calls int }

func (r *recordingInvalidator) InvalidateTrending(context.Context) { r.calls++ }

func TestCreateSong_InvalidatesTrendingCache(t *testing.T) {
	files := &mockUploader{
		uploadAudioFn: func(context.Context, io.Reader, string, int64, string) (string, error) {
			return "http://files/track.mp3", nil
		},
	}
	repo := mockSongRepo{
		createFn: func(context.Context, *domain.Song, string, string) error { return nil },
	}
	invalidator := &recordingInvalidator{}
	svc := NewCatalogService(repo, files, nil, invalidator)

	_, err := svc.CreateSong(context.Background(), artistAccess(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, invalidator.calls)
}
