package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	"github.com/soundrift/soundrift/internal/modules/discovery/domain"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDiscoveryRepo struct {
	trendingFn       func(context.Context, catalog.Access, domain.TrendingWindow, int) ([]catalog.Song, error)
	searchSongsFn    func(context.Context, catalog.Access, string, int) ([]catalog.Song, error)
	searchAlbumsFn   func(context.Context, string, int) ([]catalog.Album, error)
	searchArtistsFn  func(context.Context, string, int) ([]domain.ArtistResult, error)
	favoriteGenresFn func(context.Context, uuid.UUID) ([]uuid.UUID, error)
	recommendFn      func(context.Context, catalog.Access, uuid.UUID, []uuid.UUID, int) ([]catalog.Song, error)
	randomFn         func(context.Context, catalog.Access, int) ([]catalog.Song, error)
	listFn           func(context.Context, catalog.Access, domain.SongFilter, int) ([]catalog.Song, error)
}

func (m mockDiscoveryRepo) Trending(ctx context.Context, a catalog.Access, w domain.TrendingWindow, l int) ([]catalog.Song, error) {
	return m.trendingFn(ctx, a, w, l)
}
func (m mockDiscoveryRepo) SearchSongs(ctx context.Context, a catalog.Access, q string, l int) ([]catalog.Song, error) {
	return m.searchSongsFn(ctx, a, q, l)
}
func (m mockDiscoveryRepo) SearchAlbums(ctx context.Context, q string, l int) ([]catalog.Album, error) {
	return m.searchAlbumsFn(ctx, q, l)
}
func (m mockDiscoveryRepo) SearchArtists(ctx context.Context, q string, l int) ([]domain.ArtistResult, error) {
	return m.searchArtistsFn(ctx, q, l)
}
func (m mockDiscoveryRepo) FavoriteGenreIDs(ctx context.Context, u uuid.UUID) ([]uuid.UUID, error) {
	return m.favoriteGenresFn(ctx, u)
}
func (m mockDiscoveryRepo) RecommendByGenres(ctx context.Context, a catalog.Access, u uuid.UUID, g []uuid.UUID, l int) ([]catalog.Song, error) {
	return m.recommendFn(ctx, a, u, g, l)
}
func (m mockDiscoveryRepo) Random(ctx context.Context, a catalog.Access, l int) ([]catalog.Song, error) {
	return m.randomFn(ctx, a, l)
}
func (m mockDiscoveryRepo) ListSongs(ctx context.Context, a catalog.Access, f domain.SongFilter, l int) ([]catalog.Song, error) {
	return m.listFn(ctx, a, f, l)
}

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name    string
		in      int
		want    int
		wantErr bool
	}{
		{"default", 0, 20, false},
		{"passthrough", 7, 7, false},
		{"ceiling", 500, 100, false},
		{"negative", -1, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeLimit(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrBadLimit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDiscoveryService_TrendingClampsLimit(t *testing.T) {
	var gotLimit int
	svc := NewDiscoveryService(mockDiscoveryRepo{
		trendingFn: func(_ context.Context, _ catalog.Access, _ domain.TrendingWindow, l int) ([]catalog.Song, error) {
			gotLimit = l
			return nil, nil
		},
	})

	_, err := svc.Trending(context.Background(), catalog.Anonymous(), domain.WindowAll, 5000)
	require.NoError(t, err)
	assert.Equal(t, 100, gotLimit)
}

func TestDiscoveryService_RecommendationsAnonymousFallsBack(t *testing.T) {
	trendingCalled := false
	svc := NewDiscoveryService(mockDiscoveryRepo{
		trendingFn: func(_ context.Context, _ catalog.Access, w domain.TrendingWindow, _ int) ([]catalog.Song, error) {
			trendingCalled = true
			assert.Equal(t, domain.WindowAll, w)
			return []catalog.Song{{ID: uuid.New()}}, nil
		},
	})

	songs, err := svc.Recommendations(context.Background(), catalog.Anonymous(), 0)
	require.NoError(t, err)
	assert.True(t, trendingCalled)
	assert.Len(t, songs, 1)
}

func TestDiscoveryService_RecommendationsNoSignalFallsBack(t *testing.T) {
	userID := uuid.New()
	access := catalog.ForUser(userID, identity.RoleListener)
	trendingCalled := false
	svc := NewDiscoveryService(mockDiscoveryRepo{
		favoriteGenresFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) { return nil, nil },
		trendingFn: func(context.Context, catalog.Access, domain.TrendingWindow, int) ([]catalog.Song, error) {
			trendingCalled = true
			return nil, nil
		},
	})

	_, err := svc.Recommendations(context.Background(), access, 0)
	require.NoError(t, err)
	assert.True(t, trendingCalled)
}

func TestDiscoveryService_RecommendationsUsesGenreAffinity(t *testing.T) {
	userID := uuid.New()
	genreID := uuid.New()
	access := catalog.ForUser(userID, identity.RoleListener)
	svc := NewDiscoveryService(mockDiscoveryRepo{
		favoriteGenresFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{genreID}, nil
		},
		recommendFn: func(_ context.Context, _ catalog.Access, u uuid.UUID, genres []uuid.UUID, _ int) ([]catalog.Song, error) {
			assert.Equal(t, userID, u)
			assert.Equal(t, []uuid.UUID{genreID}, genres)
			return []catalog.Song{{ID: uuid.New()}}, nil
		},
		trendingFn: func(context.Context, catalog.Access, domain.TrendingWindow, int) ([]catalog.Song, error) {
			t.Fatal("trending fallback should not run when affinity yields songs")
			return nil, nil
		},
	})

	songs, err := svc.Recommendations(context.Background(), access, 0)
	require.NoError(t, err)
	assert.Len(t, songs, 1)
}

func TestDiscoveryService_RecommendationsEmptyAffinityFallsBack(t *testing.T) {
	userID := uuid.New()
	access := catalog.ForUser(userID, identity.RoleListener)
	trendingCalled := false
	svc := NewDiscoveryService(mockDiscoveryRepo{
		favoriteGenresFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{uuid.New()}, nil
		},
		recommendFn: func(context.Context, catalog.Access, uuid.UUID, []uuid.UUID, int) ([]catalog.Song, error) {
			return nil, nil
		},
		trendingFn: func(context.Context, catalog.Access, domain.TrendingWindow, int) ([]catalog.Song, error) {
			trendingCalled = true
			return nil, nil
		},
	})

	_, err := svc.Recommendations(context.Background(), access, 0)
	require.NoError(t, err)
	assert.True(t, trendingCalled)
}

func TestDiscoveryService_SearchValidatesQuery(t *testing.T) {
	svc := NewDiscoveryService(mockDiscoveryRepo{})

	_, err := svc.Search(context.Background(), catalog.Anonymous(), "   ", domain.SearchAll)
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestDiscoveryService_SearchSingleCategory(t *testing.T) {
	svc := NewDiscoveryService(mockDiscoveryRepo{
		searchArtistsFn: func(_ context.Context, q string, limit int) ([]domain.ArtistResult, error) {
			assert.Equal(t, "nova", q)
			assert.Equal(t, searchCategoryCap, limit)
			return []domain.ArtistResult{{ID: uuid.New(), Username: "nova"}}, nil
		},
	})

	results, err := svc.Search(context.Background(), catalog.Anonymous(), "nova", domain.SearchArtist)
	require.NoError(t, err)
	assert.Len(t, results.Artists, 1)
	assert.Nil(t, results.Songs)
	assert.Nil(t, results.Albums)
}
