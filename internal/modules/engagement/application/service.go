package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	"github.com/soundrift/soundrift/internal/modules/engagement/domain"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
)

// UserFinder is the slice of the identity module the ledger needs: resolving
// a follow target to check it exists and is an artist.
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// FollowNotifier is told about each new follow edge. Implementations must not
// block; a nil notifier disables the hook.
type FollowNotifier interface {
	NotifyNewFollower(ctx context.Context, artistID, followerID uuid.UUID)
}

type LedgerService struct {
	repo     domain.LedgerRepository
	users    UserFinder
	notifier FollowNotifier
}

func NewLedgerService(repo domain.LedgerRepository, users UserFinder, notifier FollowNotifier) *LedgerService {
	return &LedgerService{repo: repo, users: users, notifier: notifier}
}

// LikeResult carries the post-operation counter so handlers can echo it back
// without a second read.
type LikeResult struct {
	Likes   int  `json:"likes"`
	Changed bool `json:"changed"`
}

func (s *LedgerService) LikeSong(ctx context.Context, userID, songID uuid.UUID) (*LikeResult, error) {
	likes, created, err := s.repo.Like(ctx, userID, songID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Likes: likes, Changed: created}, nil
}

func (s *LedgerService) UnlikeSong(ctx context.Context, userID, songID uuid.UUID) (*LikeResult, error) {
	likes, removed, err := s.repo.Unlike(ctx, userID, songID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Likes: likes, Changed: removed}, nil
}

// RecordPlay counts the play for everyone; only authenticated listeners get a
// recently-played entry.
func (s *LedgerService) RecordPlay(ctx context.Context, songID uuid.UUID, userID *uuid.UUID) (int, error) {
	return s.repo.RecordPlay(ctx, songID, userID)
}

func (s *LedgerService) FavoriteSong(ctx context.Context, userID, songID uuid.UUID) (bool, error) {
	return s.repo.FavoriteSong(ctx, userID, songID)
}

func (s *LedgerService) UnfavoriteSong(ctx context.Context, userID, songID uuid.UUID) (bool, error) {
	return s.repo.UnfavoriteSong(ctx, userID, songID)
}

func (s *LedgerService) FavoriteAlbum(ctx context.Context, userID, albumID uuid.UUID) (bool, error) {
	return s.repo.FavoriteAlbum(ctx, userID, albumID)
}

func (s *LedgerService) UnfavoriteAlbum(ctx context.Context, userID, albumID uuid.UUID) (bool, error) {
	return s.repo.UnfavoriteAlbum(ctx, userID, albumID)
}

// FollowArtist validates the target before touching the ledger: following
// yourself or a plain listener is rejected outright.
func (s *LedgerService) FollowArtist(ctx context.Context, followerID, artistID uuid.UUID) (bool, error) {
	if followerID == artistID {
		return false, domain.ErrSelfFollow
	}

	target, err := s.users.GetByID(ctx, artistID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return false, domain.ErrArtistNotFound
		}
		return false, fmt.Errorf("failed to resolve follow target: %w", err)
	}
	if target.Role != identity.RoleArtist {
		return false, domain.ErrNotAnArtist
	}

	added, err := s.repo.Follow(ctx, followerID, artistID)
	if err != nil {
		return false, err
	}
	if added && s.notifier != nil {
		s.notifier.NotifyNewFollower(ctx, artistID, followerID)
	}
	return added, nil
}

func (s *LedgerService) UnfollowArtist(ctx context.Context, followerID, artistID uuid.UUID) (bool, error) {
	return s.repo.Unfollow(ctx, followerID, artistID)
}

func (s *LedgerService) GetFavoriteSongs(ctx context.Context, userID uuid.UUID, access catalog.Access, limit int) ([]domain.FavoritedSong, error) {
	return s.repo.ListFavoriteSongs(ctx, userID, access, clampLimit(limit))
}

func (s *LedgerService) GetFavoriteAlbums(ctx context.Context, userID uuid.UUID, limit int) ([]domain.FavoritedAlbum, error) {
	return s.repo.ListFavoriteAlbums(ctx, userID, clampLimit(limit))
}

func (s *LedgerService) GetRecentlyPlayed(ctx context.Context, userID uuid.UUID, access catalog.Access, limit int) ([]domain.PlayedSong, error) {
	return s.repo.ListRecentlyPlayed(ctx, userID, access, clampLimit(limit))
}

func (s *LedgerService) GetFollowing(ctx context.Context, followerID uuid.UUID) ([]domain.ArtistRef, error) {
	return s.repo.ListFollowing(ctx, followerID)
}

func (s *LedgerService) GetFollowers(ctx context.Context, artistID uuid.UUID) ([]domain.ArtistRef, error) {
	return s.repo.ListFollowers(ctx, artistID)
}

// FollowerIDs feeds release fanout; it is not exposed over HTTP.
func (s *LedgerService) FollowerIDs(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.FollowerIDs(ctx, artistID)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	default:
		return limit
	}
}
