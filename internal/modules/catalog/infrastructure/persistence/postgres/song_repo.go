package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/soundrift/soundrift/internal/modules/catalog/domain"
)

type PgSongRepository struct {
	db *sqlx.DB
}

func NewSongRepository(db *sqlx.DB) *PgSongRepository {
	return &PgSongRepository{db: db}
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

// VisibilityCondition appends the read-policy predicate for the given caller
// to args and returns the SQL fragment. Private rows are readable only by an
// artist-role owner.
func VisibilityCondition(access domain.Access, args []interface{}) (string, []interface{}) {
	if !access.IsArtist() {
		return fmt.Sprintf("s.visibility = %d", domain.VisibilityPublic), args
	}
	args = append(args, *access.UserID)
	return fmt.Sprintf("(s.visibility = %d OR s.user_id = $%d)", domain.VisibilityPublic, len(args)), args
}

// Create inserts a song, resolving its genre (required) and album (optional)
// titles inside the same transaction.
func (r *PgSongRepository) Create(ctx context.Context, song *domain.Song, genreTitle, albumTitle string) error {
	if song.ID == uuid.Nil {
		song.ID = uuid.New()
	}
	now := time.Now()
	song.CreatedAt = now
	song.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	genre, err := resolveGenreTx(ctx, tx, genreTitle, song.UserID)
	if err != nil {
		return err
	}
	song.GenreID = &genre.ID
	song.GenreTitle = &genre.Title

	if albumTitle != "" {
		album, err := resolveAlbumTx(ctx, tx, albumTitle, song.UserID)
		if err != nil {
			return err
		}
		song.AlbumID = &album.ID
		song.AlbumTitle = &album.Title
	}

	query := `
		INSERT INTO songs (
			id, user_id, album_id, genre_id, title, duration, release_date,
			audio_url, play_count, likes, visibility, licensing_info,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :album_id, :genre_id, :title, :duration, :release_date,
			:audio_url, 0, 0, :visibility, :licensing_info,
			:created_at, :updated_at
		)`

	if _, err := tx.NamedExecContext(ctx, query, song); err != nil {
		return fmt.Errorf("failed to create song: %w", err)
	}

	return tx.Commit()
}

func (r *PgSongRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Song, error) {
	song := &domain.Song{}
	err := r.db.GetContext(ctx, song, songSelect+` WHERE s.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSongNotFound
		}
		return nil, fmt.Errorf("failed to get song: %w", err)
	}
	return song, nil
}

// Update rewrites the song's mutable fields. New genre/album titles, when
// supplied, are re-resolved in the same transaction.
func (r *PgSongRepository) Update(ctx context.Context, song *domain.Song, genreTitle, albumTitle string) error {
	song.UpdatedAt = time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if genreTitle != "" {
		genre, err := resolveGenreTx(ctx, tx, genreTitle, song.UserID)
		if err != nil {
			return err
		}
		song.GenreID = &genre.ID
		song.GenreTitle = &genre.Title
	}
	if albumTitle != "" {
		album, err := resolveAlbumTx(ctx, tx, albumTitle, song.UserID)
		if err != nil {
			return err
		}
		song.AlbumID = &album.ID
		song.AlbumTitle = &album.Title
	}

	query := `
		UPDATE songs
		SET title = :title,
		    duration = :duration,
		    release_date = :release_date,
		    album_id = :album_id,
		    genre_id = :genre_id,
		    visibility = :visibility,
		    licensing_info = :licensing_info,
		    updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`

	result, err := tx.NamedExecContext(ctx, query, song)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSongNotFound
	}

	return tx.Commit()
}

// Delete removes the song; ledger rows cascade in the store.
func (r *PgSongRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSongNotFound
	}
	return nil
}

func (r *PgSongRepository) ListByUserID(ctx context.Context, userID uuid.UUID, access domain.Access, limit, offset int) ([]domain.Song, error) {
	args := []interface{}{userID}
	visibility, args := VisibilityCondition(access, args)

	query := songSelect + fmt.Sprintf(
		` WHERE s.user_id = $1 AND %s ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d`,
		visibility, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	songs := []domain.Song{}
	if err := r.db.SelectContext(ctx, &songs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

func (r *PgSongRepository) ResolveOrCreateGenre(ctx context.Context, title string, actor uuid.UUID) (*domain.Genre, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	genre, err := resolveGenreTx(ctx, tx, title, actor)
	if err != nil {
		return nil, err
	}
	return genre, tx.Commit()
}

func (r *PgSongRepository) ResolveOrCreateAlbum(ctx context.Context, title string, actor uuid.UUID) (*domain.Album, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	album, err := resolveAlbumTx(ctx, tx, title, actor)
	if err != nil {
		return nil, err
	}
	return album, tx.Commit()
}

// resolveGenreTx reuses the oldest genre with the exact title or creates one
// owned by actor. Titles are not unique, so a benign race between first
// writers may leave duplicate rows; picking the oldest keeps later reads
// converging on one of them.
func resolveGenreTx(ctx context.Context, tx *sqlx.Tx, title string, actor uuid.UUID) (*domain.Genre, error) {
	genre := &domain.Genre{}
	err := tx.GetContext(ctx, genre,
		`SELECT * FROM genres WHERE title = $1 ORDER BY created_at, id LIMIT 1`, title)
	if err == nil {
		return genre, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up genre: %w", err)
	}

	genre = &domain.Genre{
		ID:        uuid.New(),
		UserID:    &actor,
		Title:     title,
		CreatedAt: time.Now(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO genres (id, user_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		genre.ID, genre.UserID, genre.Title, genre.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create genre %q: %w", title, err)
	}
	return genre, nil
}

func resolveAlbumTx(ctx context.Context, tx *sqlx.Tx, title string, actor uuid.UUID) (*domain.Album, error) {
	album := &domain.Album{}
	err := tx.GetContext(ctx, album,
		`SELECT * FROM albums WHERE title = $1 ORDER BY created_at, id LIMIT 1`, title)
	if err == nil {
		return album, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up album: %w", err)
	}

	album = &domain.Album{
		ID:          uuid.New(),
		UserID:      &actor,
		Title:       title,
		ReleaseDate: time.Now(),
		CreatedAt:   time.Now(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO albums (id, user_id, title, release_date, created_at) VALUES ($1, $2, $3, $4, $5)`,
		album.ID, album.UserID, album.Title, album.ReleaseDate, album.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create album %q: %w", title, err)
	}
	return album, nil
}

func (r *PgSongRepository) GetAlbumByID(ctx context.Context, id uuid.UUID) (*domain.Album, error) {
	album := &domain.Album{}
	err := r.db.GetContext(ctx, album, `SELECT * FROM albums WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAlbumNotFound
		}
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return album, nil
}

func (r *PgSongRepository) SetAlbumCover(ctx context.Context, id uuid.UUID, coverURL string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE albums SET cover_url = $2 WHERE id = $1`, id, coverURL)
	if err != nil {
		return fmt.Errorf("failed to set album cover: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAlbumNotFound
	}
	return nil
}

func (r *PgSongRepository) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	genres := []domain.Genre{}
	if err := r.db.SelectContext(ctx, &genres, `SELECT * FROM genres ORDER BY title, created_at`); err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (r *PgSongRepository) ListAlbums(ctx context.Context, limit, offset int) ([]domain.Album, error) {
	albums := []domain.Album{}
	err := r.db.SelectContext(ctx, &albums,
		`SELECT * FROM albums ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}
