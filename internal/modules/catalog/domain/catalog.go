package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
)

// Visibility is a closed enumeration with stable wire values.
type Visibility int

const (
	VisibilityPublic  Visibility = 1
	VisibilityPrivate Visibility = 2
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Genre is created lazily by exact-title lookup. Titles are not unique:
// concurrent first-time creators may leave duplicate rows, and resolution
// always picks the oldest one.
type Genre struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Title     string     `json:"title" db:"title"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type Album struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	ReleaseDate time.Time  `json:"release_date" db:"release_date"`
	CoverURL    *string    `json:"cover_url,omitempty" db:"cover_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Song carries two denormalized counters. Likes must equal the number of
// song_likes rows at all times; both counters are mutated only by atomic
// in-database arithmetic inside the engagement ledger.
type Song struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	ArtistName    string     `json:"artist_name" db:"artist_name"`
	AlbumID       *uuid.UUID `json:"album_id,omitempty" db:"album_id"`
	AlbumTitle    *string    `json:"album_title,omitempty" db:"album_title"`
	GenreID       *uuid.UUID `json:"genre_id,omitempty" db:"genre_id"`
	GenreTitle    *string    `json:"genre_title,omitempty" db:"genre_title"`
	Title         string     `json:"title" db:"title"`
	Duration      int        `json:"duration" db:"duration"`
	ReleaseDate   time.Time  `json:"release_date" db:"release_date"`
	AudioURL      string     `json:"audio_url" db:"audio_url"`
	PlayCount     int        `json:"play_count" db:"play_count"`
	Likes         int        `json:"likes" db:"likes"`
	Visibility    Visibility `json:"visibility" db:"visibility"`
	LicensingInfo *string    `json:"licensing_info,omitempty" db:"licensing_info"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

const SongTitleMaxLength = 100

// Access describes the caller for visibility filtering. A nil UserID means an
// anonymous request.
type Access struct {
	UserID *uuid.UUID
	Role   identity.Role
}

func Anonymous() Access {
	return Access{}
}

func ForUser(id uuid.UUID, role identity.Role) Access {
	return Access{UserID: &id, Role: role}
}

func (a Access) Authenticated() bool {
	return a.UserID != nil
}

func (a Access) IsArtist() bool {
	return a.Authenticated() && a.Role == identity.RoleArtist
}

// CanSee reports whether the caller may read the song. Private songs are
// visible only to their owner, and only when that owner holds the artist
// role; a plain listener cannot see their own private songs.
func (a Access) CanSee(s *Song) bool {
	if s.Visibility == VisibilityPublic {
		return true
	}
	return a.IsArtist() && *a.UserID == s.UserID
}

// CanModify reports whether the caller may mutate the entity owned by owner.
func (a Access) CanModify(owner uuid.UUID) bool {
	return a.IsArtist() && *a.UserID == owner
}

// SongRepository is the catalog store.
type SongRepository interface {
	// Create resolves the genre (required) and album (optional) titles inside
	// the same transaction as the song insert.
	Create(ctx context.Context, song *Song, genreTitle, albumTitle string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Song, error)
	Update(ctx context.Context, song *Song, genreTitle, albumTitle string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUserID(ctx context.Context, userID uuid.UUID, access Access, limit, offset int) ([]Song, error)

	ResolveOrCreateGenre(ctx context.Context, title string, actor uuid.UUID) (*Genre, error)
	ResolveOrCreateAlbum(ctx context.Context, title string, actor uuid.UUID) (*Album, error)
	GetAlbumByID(ctx context.Context, id uuid.UUID) (*Album, error)
	SetAlbumCover(ctx context.Context, id uuid.UUID, coverURL string) error
	ListGenres(ctx context.Context) ([]Genre, error)
	ListAlbums(ctx context.Context, limit, offset int) ([]Album, error)
}

// SongFinder provides song lookups for other modules.
type SongFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Song, error)
}
