package application

import (
	"context"
	"strings"

	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	"github.com/soundrift/soundrift/internal/modules/discovery/domain"
)

type DiscoveryService struct {
	repo domain.DiscoveryRepository
}

func NewDiscoveryService(repo domain.DiscoveryRepository) *DiscoveryService {
	return &DiscoveryService{repo: repo}
}

const (
	defaultLimit      = 20
	maxLimit          = 100
	searchCategoryCap = 20
)

// normalizeLimit applies the default and the ceiling; explicitly negative
// limits are a caller error rather than something to silently fix.
func normalizeLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, domain.ErrBadLimit
	case limit == 0:
		return defaultLimit, nil
	case limit > maxLimit:
		return maxLimit, nil
	default:
		return limit, nil
	}
}

func (s *DiscoveryService) Trending(ctx context.Context, access catalog.Access, window domain.TrendingWindow, limit int) ([]catalog.Song, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.repo.Trending(ctx, access, window, limit)
}

// Search runs each requested category with a fixed per-category cap.
func (s *DiscoveryService) Search(ctx context.Context, access catalog.Access, query string, searchType domain.SearchType) (*domain.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	results := &domain.SearchResults{}
	var err error

	if searchType == domain.SearchAll || searchType == domain.SearchSong {
		if results.Songs, err = s.repo.SearchSongs(ctx, access, query, searchCategoryCap); err != nil {
			return nil, err
		}
	}
	if searchType == domain.SearchAll || searchType == domain.SearchAlbum {
		if results.Albums, err = s.repo.SearchAlbums(ctx, query, searchCategoryCap); err != nil {
			return nil, err
		}
	}
	if searchType == domain.SearchAll || searchType == domain.SearchArtist {
		if results.Artists, err = s.repo.SearchArtists(ctx, query, searchCategoryCap); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Recommendations seeds from the caller's favorited genres and falls back to
// all-time trending when there is no signal to work from.
func (s *DiscoveryService) Recommendations(ctx context.Context, access catalog.Access, limit int) ([]catalog.Song, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	if !access.Authenticated() {
		return s.repo.Trending(ctx, access, domain.WindowAll, limit)
	}

	genreIDs, err := s.repo.FavoriteGenreIDs(ctx, *access.UserID)
	if err != nil {
		return nil, err
	}
	if len(genreIDs) == 0 {
		return s.repo.Trending(ctx, access, domain.WindowAll, limit)
	}

	songs, err := s.repo.RecommendByGenres(ctx, access, *access.UserID, genreIDs, limit)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return s.repo.Trending(ctx, access, domain.WindowAll, limit)
	}
	return songs, nil
}

func (s *DiscoveryService) Random(ctx context.Context, access catalog.Access, limit int) ([]catalog.Song, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.repo.Random(ctx, access, limit)
}

func (s *DiscoveryService) ListSongs(ctx context.Context, access catalog.Access, filter domain.SongFilter, limit int) ([]catalog.Song, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSongs(ctx, access, filter, limit)
}
