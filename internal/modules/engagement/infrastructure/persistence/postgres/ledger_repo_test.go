package postgres_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/soundrift/soundrift/internal/modules/engagement/domain"
	engagementPostgres "github.com/soundrift/soundrift/internal/modules/engagement/infrastructure/persistence/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_LikeInsertsAndBumpsCounter(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)
	userID, songID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO song_likes").
		WithArgs(sqlmock.AnyArg(), userID, songID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE songs SET likes = likes \+ 1 WHERE id = \$1 RETURNING likes`).
		WithArgs(songID).
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(5))
	mock.ExpectCommit()

	likes, created, err := repo.Like(context.Background(), userID, songID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 5, likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_LikeDuplicateLeavesCounterAlone(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)
	userID, songID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO song_likes").
		WithArgs(sqlmock.AnyArg(), userID, songID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT likes FROM songs WHERE id = \$1`).
		WithArgs(songID).
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(5))
	mock.ExpectCommit()

	likes, created, err := repo.Like(context.Background(), userID, songID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 5, likes)
}

func TestLedgerRepository_LikeMissingSong(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO song_likes").
		WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	_, _, err := repo.Like(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSongNotFound)
}

func TestLedgerRepository_UnlikeNeverGoesNegative(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)
	userID, songID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM song_likes WHERE user_id = \\$1 AND song_id = \\$2").
		WithArgs(userID, songID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE songs SET likes = GREATEST\(likes - 1, 0\) WHERE id = \$1 RETURNING likes`).
		WithArgs(songID).
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(0))
	mock.ExpectCommit()

	likes, removed, err := repo.Unlike(context.Background(), userID, songID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, likes)
}

func TestLedgerRepository_UnlikeWithoutLikeIsNoop(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)
	userID, songID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM song_likes").
		WithArgs(userID, songID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT likes FROM songs WHERE id = \$1`).
		WithArgs(songID).
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(3))
	mock.ExpectCommit()

	likes, removed, err := repo.Unlike(context.Background(), userID, songID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 3, likes)
}

func TestLedgerRepository_RecordPlayAnonymous(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)
	songID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE songs SET play_count = play_count \+ 1 WHERE id = \$1 RETURNING play_count`).
		WithArgs(songID).
		WillReturnRows(sqlmock.NewRows([]string{"play_count"}).AddRow(42))
	mock.ExpectCommit()

	playCount, err := repo.RecordPlay(context.Background(), songID, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, playCount)
}

func TestLedgerRepository_RecordPlayUpsertsRecentlyPlayed(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)
	userID, songID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE songs SET play_count = play_count \+ 1`).
		WithArgs(songID).
		WillReturnRows(sqlmock.NewRows([]string{"play_count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO recently_played").
		WithArgs(sqlmock.AnyArg(), userID, songID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	playCount, err := repo.RecordPlay(context.Background(), songID, &userID)
	require.NoError(t, err)
	assert.Equal(t, 1, playCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_FavoriteSongIdempotent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)
	userID, songID := uuid.New(), uuid.New()

	mock.ExpectExec("INSERT INTO favorite_songs").
		WithArgs(sqlmock.AnyArg(), userID, songID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	added, err := repo.FavoriteSong(context.Background(), userID, songID)
	require.NoError(t, err)
	assert.True(t, added)

	mock.ExpectExec("INSERT INTO favorite_songs").
		WithArgs(sqlmock.AnyArg(), userID, songID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	added, err = repo.FavoriteSong(context.Background(), userID, songID)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestLedgerRepository_FollowSelfRejectedByCheck(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)
	userID := uuid.New()

	mock.ExpectExec("INSERT INTO artist_follows").
		WillReturnError(&pq.Error{Code: "23514"})

	_, err := repo.Follow(context.Background(), userID, userID)
	assert.ErrorIs(t, err, domain.ErrSelfFollow)
}

func TestLedgerRepository_FollowMissingArtist(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := engagementPostgres.NewLedgerRepository(db)

	mock.ExpectExec("INSERT INTO artist_follows").
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := repo.Follow(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrArtistNotFound)
}
