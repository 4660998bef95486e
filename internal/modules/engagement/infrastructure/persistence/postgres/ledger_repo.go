package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	catalogpg "github.com/soundrift/soundrift/internal/modules/catalog/infrastructure/persistence/postgres"
	"github.com/soundrift/soundrift/internal/modules/engagement/domain"
)

type PgLedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *PgLedgerRepository {
	return &PgLedgerRepository{db: db}
}

const ledgerSongColumns = `
	s.id, s.user_id, u.username AS artist_name,
	s.album_id, a.title AS album_title,
	s.genre_id, g.title AS genre_title,
	s.title, s.duration, s.release_date, s.audio_url,
	s.play_count, s.likes, s.visibility, s.licensing_info,
	s.created_at, s.updated_at`

// Like inserts the (user, song) like and bumps the counter in one
// transaction. The unique constraint makes concurrent duplicates collapse to
// a single insert, so the counter moves exactly once.
func (r *PgLedgerRepository) Like(ctx context.Context, userID, songID uuid.UUID) (int, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO song_likes (id, user_id, song_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, song_id) DO NOTHING`,
		uuid.New(), userID, songID)
	if err != nil {
		return 0, false, mapForeignKey(err, domain.ErrSongNotFound)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}

	var likes int
	if inserted == 1 {
		err = tx.GetContext(ctx, &likes,
			`UPDATE songs SET likes = likes + 1 WHERE id = $1 RETURNING likes`, songID)
	} else {
		err = tx.GetContext(ctx, &likes, `SELECT likes FROM songs WHERE id = $1`, songID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, domain.ErrSongNotFound
		}
		return 0, false, fmt.Errorf("failed to update likes counter: %w", err)
	}

	return likes, inserted == 1, tx.Commit()
}

// Unlike removes the like if present; the counter moves only on an actual
// delete and never goes below zero.
func (r *PgLedgerRepository) Unlike(ctx context.Context, userID, songID uuid.UUID) (int, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM song_likes WHERE user_id = $1 AND song_id = $2`, userID, songID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to delete like: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}

	var likes int
	if removed == 1 {
		err = tx.GetContext(ctx, &likes,
			`UPDATE songs SET likes = GREATEST(likes - 1, 0) WHERE id = $1 RETURNING likes`, songID)
	} else {
		err = tx.GetContext(ctx, &likes, `SELECT likes FROM songs WHERE id = $1`, songID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, domain.ErrSongNotFound
		}
		return 0, false, fmt.Errorf("failed to update likes counter: %w", err)
	}

	return likes, removed == 1, tx.Commit()
}

// RecordPlay bumps play_count with in-database arithmetic (never
// read-modify-write) and, for authenticated callers, refreshes their
// recently-played row in the same transaction.
func (r *PgLedgerRepository) RecordPlay(ctx context.Context, songID uuid.UUID, userID *uuid.UUID) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var playCount int
	err = tx.GetContext(ctx, &playCount,
		`UPDATE songs SET play_count = play_count + 1 WHERE id = $1 RETURNING play_count`, songID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrSongNotFound
		}
		return 0, fmt.Errorf("failed to increment play count: %w", err)
	}

	if userID != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recently_played (id, user_id, song_id, played_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (user_id, song_id) DO UPDATE SET played_at = NOW()`,
			uuid.New(), *userID, songID)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert recently played: %w", err)
		}
	}

	return playCount, tx.Commit()
}

func (r *PgLedgerRepository) FavoriteSong(ctx context.Context, userID, songID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO favorite_songs (id, user_id, song_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, song_id) DO NOTHING`,
		uuid.New(), userID, songID)
	if err != nil {
		return false, mapForeignKey(err, domain.ErrSongNotFound)
	}
	rows, err := result.RowsAffected()
	return rows == 1, err
}

func (r *PgLedgerRepository) UnfavoriteSong(ctx context.Context, userID, songID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorite_songs WHERE user_id = $1 AND song_id = $2`, userID, songID)
	if err != nil {
		return false, fmt.Errorf("failed to unfavorite song: %w", err)
	}
	rows, err := result.RowsAffected()
	return rows == 1, err
}

func (r *PgLedgerRepository) FavoriteAlbum(ctx context.Context, userID, albumID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO favorite_albums (id, user_id, album_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, album_id) DO NOTHING`,
		uuid.New(), userID, albumID)
	if err != nil {
		return false, mapForeignKey(err, domain.ErrAlbumNotFound)
	}
	rows, err := result.RowsAffected()
	return rows == 1, err
}

func (r *PgLedgerRepository) UnfavoriteAlbum(ctx context.Context, userID, albumID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorite_albums WHERE user_id = $1 AND album_id = $2`, userID, albumID)
	if err != nil {
		return false, fmt.Errorf("failed to unfavorite album: %w", err)
	}
	rows, err := result.RowsAffected()
	return rows == 1, err
}

// Follow relies on the store's CHECK constraint as a backstop against
// self-follows; the service rejects them before getting here.
func (r *PgLedgerRepository) Follow(ctx context.Context, followerID, artistID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO artist_follows (id, follower_id, artist_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, artist_id) DO NOTHING`,
		uuid.New(), followerID, artistID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23514" {
			return false, domain.ErrSelfFollow
		}
		return false, mapForeignKey(err, domain.ErrArtistNotFound)
	}
	rows, err := result.RowsAffected()
	return rows == 1, err
}

func (r *PgLedgerRepository) Unfollow(ctx context.Context, followerID, artistID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM artist_follows WHERE follower_id = $1 AND artist_id = $2`, followerID, artistID)
	if err != nil {
		return false, fmt.Errorf("failed to unfollow: %w", err)
	}
	rows, err := result.RowsAffected()
	return rows == 1, err
}

func (r *PgLedgerRepository) ListFavoriteSongs(ctx context.Context, userID uuid.UUID, access catalog.Access, limit int) ([]domain.FavoritedSong, error) {
	args := []interface{}{userID}
	visibility, args := catalogpg.VisibilityCondition(access, args)

	query := fmt.Sprintf(`
		SELECT %s, f.created_at AS favorited_at
		FROM favorite_songs f
		JOIN songs s ON f.song_id = s.id
		JOIN users u ON s.user_id = u.id
		LEFT JOIN albums a ON s.album_id = a.id
		LEFT JOIN genres g ON s.genre_id = g.id
		WHERE f.user_id = $1 AND %s
		ORDER BY f.created_at DESC
		LIMIT $%d`, ledgerSongColumns, visibility, len(args)+1)
	args = append(args, limit)

	songs := []domain.FavoritedSong{}
	if err := r.db.SelectContext(ctx, &songs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list favorite songs: %w", err)
	}
	return songs, nil
}

func (r *PgLedgerRepository) ListFavoriteAlbums(ctx context.Context, userID uuid.UUID, limit int) ([]domain.FavoritedAlbum, error) {
	albums := []domain.FavoritedAlbum{}
	err := r.db.SelectContext(ctx, &albums, `
		SELECT a.id, a.user_id, a.title, a.release_date, a.cover_url, a.created_at,
		       f.created_at AS favorited_at
		FROM favorite_albums f
		JOIN albums a ON f.album_id = a.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite albums: %w", err)
	}
	return albums, nil
}

func (r *PgLedgerRepository) ListRecentlyPlayed(ctx context.Context, userID uuid.UUID, access catalog.Access, limit int) ([]domain.PlayedSong, error) {
	args := []interface{}{userID}
	visibility, args := catalogpg.VisibilityCondition(access, args)

	query := fmt.Sprintf(`
		SELECT %s, rp.played_at
		FROM recently_played rp
		JOIN songs s ON rp.song_id = s.id
		JOIN users u ON s.user_id = u.id
		LEFT JOIN albums a ON s.album_id = a.id
		LEFT JOIN genres g ON s.genre_id = g.id
		WHERE rp.user_id = $1 AND %s
		ORDER BY rp.played_at DESC
		LIMIT $%d`, ledgerSongColumns, visibility, len(args)+1)
	args = append(args, limit)

	songs := []domain.PlayedSong{}
	if err := r.db.SelectContext(ctx, &songs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list recently played: %w", err)
	}
	return songs, nil
}

func (r *PgLedgerRepository) ListFollowing(ctx context.Context, followerID uuid.UUID) ([]domain.ArtistRef, error) {
	refs := []domain.ArtistRef{}
	err := r.db.SelectContext(ctx, &refs, `
		SELECT u.id, u.username, af.created_at AS followed_at
		FROM artist_follows af
		JOIN users u ON af.artist_id = u.id
		WHERE af.follower_id = $1
		ORDER BY af.created_at DESC`, followerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return refs, nil
}

func (r *PgLedgerRepository) ListFollowers(ctx context.Context, artistID uuid.UUID) ([]domain.ArtistRef, error) {
	refs := []domain.ArtistRef{}
	err := r.db.SelectContext(ctx, &refs, `
		SELECT u.id, u.username, af.created_at AS followed_at
		FROM artist_follows af
		JOIN users u ON af.follower_id = u.id
		WHERE af.artist_id = $1
		ORDER BY af.created_at DESC`, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return refs, nil
}

func (r *PgLedgerRepository) FollowerIDs(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &ids,
		`SELECT follower_id FROM artist_follows WHERE artist_id = $1`, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follower ids: %w", err)
	}
	return ids, nil
}

// mapForeignKey converts a foreign-key violation into the target-missing
// sentinel for the operation.
func mapForeignKey(err error, notFound error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return notFound
	}
	return fmt.Errorf("ledger write failed: %w", err)
}
