package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
)

// TrendingWindow bounds the trending query to recent uploads. An empty value
// parses as WindowAll.
type TrendingWindow string

const (
	WindowAll   TrendingWindow = "all"
	WindowWeek  TrendingWindow = "week"
	WindowMonth TrendingWindow = "month"
)

func ParseWindow(s string) (TrendingWindow, error) {
	switch TrendingWindow(s) {
	case "", WindowAll:
		return WindowAll, nil
	case WindowWeek:
		return WindowWeek, nil
	case WindowMonth:
		return WindowMonth, nil
	default:
		return "", ErrBadWindow
	}
}

type SearchType string

const (
	SearchAll    SearchType = "all"
	SearchSong   SearchType = "song"
	SearchAlbum  SearchType = "album"
	SearchArtist SearchType = "artist"
)

func ParseSearchType(s string) (SearchType, error) {
	switch SearchType(s) {
	case "", SearchAll:
		return SearchAll, nil
	case SearchSong, SearchAlbum, SearchArtist:
		return SearchType(s), nil
	default:
		return "", ErrBadSearchType
	}
}

// ArtistResult is the artist slice of a search response.
type ArtistResult struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SearchResults carries whichever categories the search type asked for;
// omitted categories stay nil.
type SearchResults struct {
	Songs   []catalog.Song  `json:"songs,omitempty"`
	Albums  []catalog.Album `json:"albums,omitempty"`
	Artists []ArtistResult  `json:"artists,omitempty"`
}

// SongFilter is a conjunction: every set field must match.
type SongFilter struct {
	GenreTitle string
	ArtistName string
	AlbumTitle string
	From       *time.Time
	To         *time.Time
}

type DiscoveryRepository interface {
	Trending(ctx context.Context, access catalog.Access, window TrendingWindow, limit int) ([]catalog.Song, error)
	SearchSongs(ctx context.Context, access catalog.Access, query string, limit int) ([]catalog.Song, error)
	SearchAlbums(ctx context.Context, query string, limit int) ([]catalog.Album, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]ArtistResult, error)

	// FavoriteGenreIDs returns the distinct genres of the songs the user has
	// favorited, the seed for recommendations.
	FavoriteGenreIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	RecommendByGenres(ctx context.Context, access catalog.Access, userID uuid.UUID, genreIDs []uuid.UUID, limit int) ([]catalog.Song, error)

	Random(ctx context.Context, access catalog.Access, limit int) ([]catalog.Song, error)
	ListSongs(ctx context.Context, access catalog.Access, filter SongFilter, limit int) ([]catalog.Song, error)
}
