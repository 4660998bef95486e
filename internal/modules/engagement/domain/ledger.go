package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
)

// The ledger holds one row per (user, target) pair; uniqueness constraints in
// the store make duplicate attempts collapse to a no-op instead of an error.

type SongLike struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	SongID    uuid.UUID `json:"song_id" db:"song_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ArtistFollow struct {
	ID         uuid.UUID `json:"id" db:"id"`
	FollowerID uuid.UUID `json:"follower_id" db:"follower_id"`
	ArtistID   uuid.UUID `json:"artist_id" db:"artist_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PlayedSong is a recently-played feed entry.
type PlayedSong struct {
	catalog.Song
	PlayedAt time.Time `json:"played_at" db:"played_at"`
}

// FavoritedSong is a favorites feed entry, ordered by when it was favorited.
type FavoritedSong struct {
	catalog.Song
	FavoritedAt time.Time `json:"favorited_at" db:"favorited_at"`
}

type FavoritedAlbum struct {
	catalog.Album
	FavoritedAt time.Time `json:"favorited_at" db:"favorited_at"`
}

// ArtistRef is a minimal user reference for follow listings.
type ArtistRef struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	FollowedAt time.Time `json:"followed_at" db:"followed_at"`
}

// LedgerRepository owns every mutation of the interaction records and of the
// denormalized song counters. Counters are only ever touched here, with
// in-database arithmetic inside the same transaction as the ledger row.
type LedgerRepository interface {
	// Like creates the like if absent; the likes counter moves only when a
	// row was actually inserted. Returns the current count.
	Like(ctx context.Context, userID, songID uuid.UUID) (likes int, created bool, err error)
	Unlike(ctx context.Context, userID, songID uuid.UUID) (likes int, removed bool, err error)

	// RecordPlay increments play_count unconditionally; when userID is
	// non-nil it also upserts the caller's recently-played row.
	RecordPlay(ctx context.Context, songID uuid.UUID, userID *uuid.UUID) (playCount int, err error)

	FavoriteSong(ctx context.Context, userID, songID uuid.UUID) (added bool, err error)
	UnfavoriteSong(ctx context.Context, userID, songID uuid.UUID) (removed bool, err error)
	FavoriteAlbum(ctx context.Context, userID, albumID uuid.UUID) (added bool, err error)
	UnfavoriteAlbum(ctx context.Context, userID, albumID uuid.UUID) (removed bool, err error)

	Follow(ctx context.Context, followerID, artistID uuid.UUID) (added bool, err error)
	Unfollow(ctx context.Context, followerID, artistID uuid.UUID) (removed bool, err error)

	ListFavoriteSongs(ctx context.Context, userID uuid.UUID, access catalog.Access, limit int) ([]FavoritedSong, error)
	ListFavoriteAlbums(ctx context.Context, userID uuid.UUID, limit int) ([]FavoritedAlbum, error)
	ListRecentlyPlayed(ctx context.Context, userID uuid.UUID, access catalog.Access, limit int) ([]PlayedSong, error)
	ListFollowing(ctx context.Context, followerID uuid.UUID) ([]ArtistRef, error)
	ListFollowers(ctx context.Context, artistID uuid.UUID) ([]ArtistRef, error)
	FollowerIDs(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error)
}
