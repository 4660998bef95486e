package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	catalogpg "github.com/soundrift/soundrift/internal/modules/catalog/infrastructure/persistence/postgres"
	"github.com/soundrift/soundrift/internal/modules/discovery/domain"
)

type PgDiscoveryRepository struct {
	db *sqlx.DB
}

func NewDiscoveryRepository(db *sqlx.DB) *PgDiscoveryRepository {
	return &PgDiscoveryRepository{db: db}
}

const songSelect = `
	SELECT s.id, s.user_id, u.username AS artist_name,
	       s.album_id, a.title AS album_title,
	       s.genre_id, g.title AS genre_title,
	       s.title, s.duration, s.release_date, s.audio_url,
	       s.play_count, s.likes, s.visibility, s.licensing_info,
	       s.created_at, s.updated_at
	FROM songs s
	JOIN users u ON s.user_id = u.id
	LEFT JOIN albums a ON s.album_id = a.id
	LEFT JOIN genres g ON s.genre_id = g.id`

// Newest uploads win ties so fresh content surfaces over stale rows with the
// same counters.
const trendingOrder = `ORDER BY s.play_count DESC, s.likes DESC, s.created_at DESC`

func (r *PgDiscoveryRepository) Trending(ctx context.Context, access catalog.Access, window domain.TrendingWindow, limit int) ([]catalog.Song, error) {
	visibility, args := catalogpg.VisibilityCondition(access, nil)

	conditions := []string{visibility}
	switch window {
	case domain.WindowWeek:
		conditions = append(conditions, "s.created_at >= NOW() - INTERVAL '7 days'")
	case domain.WindowMonth:
		conditions = append(conditions, "s.created_at >= NOW() - INTERVAL '30 days'")
	}

	query := fmt.Sprintf(`%s WHERE %s %s LIMIT $%d`,
		songSelect, strings.Join(conditions, " AND "), trendingOrder, len(args)+1)
	args = append(args, limit)

	songs := []catalog.Song{}
	if err := r.db.SelectContext(ctx, &songs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch trending songs: %w", err)
	}
	return songs, nil
}

// SearchSongs matches the pattern against title, genre, album and the owning
// artist's username.
func (r *PgDiscoveryRepository) SearchSongs(ctx context.Context, access catalog.Access, query string, limit int) ([]catalog.Song, error) {
	args := []interface{}{likePattern(query)}
	visibility, args := catalogpg.VisibilityCondition(access, args)

	sqlQuery := fmt.Sprintf(`%s
		WHERE (s.title ILIKE $1 OR g.title ILIKE $1 OR a.title ILIKE $1 OR u.username ILIKE $1)
		  AND %s
		ORDER BY s.play_count DESC, s.created_at DESC
		LIMIT $%d`, songSelect, visibility, len(args)+1)
	args = append(args, limit)

	songs := []catalog.Song{}
	if err := r.db.SelectContext(ctx, &songs, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to search songs: %w", err)
	}
	return songs, nil
}

func (r *PgDiscoveryRepository) SearchAlbums(ctx context.Context, query string, limit int) ([]catalog.Album, error) {
	albums := []catalog.Album{}
	err := r.db.SelectContext(ctx, &albums, `
		SELECT al.id, al.user_id, al.title, al.release_date, al.cover_url, al.created_at
		FROM albums al
		JOIN users u ON al.user_id = u.id
		WHERE al.title ILIKE $1 OR u.username ILIKE $1
		ORDER BY al.created_at DESC
		LIMIT $2`, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search albums: %w", err)
	}
	return albums, nil
}

func (r *PgDiscoveryRepository) SearchArtists(ctx context.Context, query string, limit int) ([]domain.ArtistResult, error) {
	artists := []domain.ArtistResult{}
	err := r.db.SelectContext(ctx, &artists, `
		SELECT id, username, created_at
		FROM users
		WHERE role = 2 AND username ILIKE $1
		ORDER BY username
		LIMIT $2`, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search artists: %w", err)
	}
	return artists, nil
}

func (r *PgDiscoveryRepository) FavoriteGenreIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT s.genre_id
		FROM favorite_songs f
		JOIN songs s ON f.song_id = s.id
		WHERE f.user_id = $1 AND s.genre_id IS NOT NULL`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorite genres: %w", err)
	}
	return ids, nil
}

// RecommendByGenres returns visible songs in the given genres that the user
// has not already favorited, in trending order.
func (r *PgDiscoveryRepository) RecommendByGenres(ctx context.Context, access catalog.Access, userID uuid.UUID, genreIDs []uuid.UUID, limit int) ([]catalog.Song, error) {
	query, inArgs, err := sqlx.In(`s.genre_id IN (?)`, genreIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build genre predicate: %w", err)
	}

	visibility, args := catalogpg.VisibilityCondition(access, inArgs)
	args = append(args, userID)
	notFavorited := fmt.Sprintf(
		"s.id NOT IN (SELECT song_id FROM favorite_songs WHERE user_id = $%d)", len(args))

	sqlQuery := fmt.Sprintf(`%s WHERE %s AND %s AND %s %s LIMIT $%d`,
		songSelect, sqlx.Rebind(sqlx.DOLLAR, query), visibility, notFavorited, trendingOrder, len(args)+1)
	args = append(args, limit)

	songs := []catalog.Song{}
	if err := r.db.SelectContext(ctx, &songs, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	return songs, nil
}

func (r *PgDiscoveryRepository) Random(ctx context.Context, access catalog.Access, limit int) ([]catalog.Song, error) {
	visibility, args := catalogpg.VisibilityCondition(access, nil)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY RANDOM() LIMIT $%d`,
		songSelect, visibility, len(args)+1)
	args = append(args, limit)

	songs := []catalog.Song{}
	if err := r.db.SelectContext(ctx, &songs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch random songs: %w", err)
	}
	return songs, nil
}

func (r *PgDiscoveryRepository) ListSongs(ctx context.Context, access catalog.Access, filter domain.SongFilter, limit int) ([]catalog.Song, error) {
	var args []interface{}
	var conditions []string

	addLike := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, likePattern(value))
		conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}
	addLike("g.title", filter.GenreTitle)
	addLike("u.username", filter.ArtistName)
	addLike("a.title", filter.AlbumTitle)

	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("s.release_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("s.release_date <= $%d", len(args)))
	}

	visibility, args := catalogpg.VisibilityCondition(access, args)
	conditions = append(conditions, visibility)

	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.created_at DESC LIMIT $%d`,
		songSelect, strings.Join(conditions, " AND "), len(args)+1)
	args = append(args, limit)

	songs := []catalog.Song{}
	if err := r.db.SelectContext(ctx, &songs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

func likePattern(q string) string {
	return "%" + strings.ReplaceAll(strings.ReplaceAll(q, "%", `\%`), "_", `\_`) + "%"
}
