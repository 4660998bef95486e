package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/soundrift/soundrift/internal/modules/notification/domain"
	"github.com/soundrift/soundrift/internal/modules/notification/infrastructure/websocket"
)

// UsernameResolver resolves a user id to its display name for message
// rendering.
type UsernameResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// FollowerSource yields the follower ids of an artist for release fanout.
// Set after construction to break the wiring cycle with the engagement
// module.
type FollowerSource interface {
	FollowerIDs(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error)
}

const fanoutTimeout = 30 * time.Second

// NotificationService persists events and pushes them live over the
// websocket hub. Nothing here ever fails the operation that triggered it.
type NotificationService struct {
	repo      domain.NotificationRepository
	hub       *websocket.Hub
	users     UsernameResolver
	followers FollowerSource
}

func NewNotificationService(repo domain.NotificationRepository, hub *websocket.Hub, users UsernameResolver) *NotificationService {
	return &NotificationService{repo: repo, hub: hub, users: users}
}

func (s *NotificationService) SetFollowerSource(followers FollowerSource) {
	s.followers = followers
}

func (s *NotificationService) Hub() *websocket.Hub {
	return s.hub
}

// Create stores the notification and unicasts it to the recipient's open
// connections.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, title, message string, eventType domain.EventType) error {
	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      eventType,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if payload, err := json.Marshal(notification); err == nil {
		s.hub.SendToUser(userID, payload)
	}
	return nil
}

// NotifyNewFollower tells the artist about a new follower. Errors are logged
// and swallowed; the follow itself already succeeded.
func (s *NotificationService) NotifyNewFollower(ctx context.Context, artistID, followerID uuid.UUID) {
	follower := "Someone"
	if user, err := s.users.GetByID(ctx, followerID); err == nil {
		follower = user.Username
	}
	message := fmt.Sprintf("%s started following you.", follower)
	if err := s.Create(ctx, artistID, "New follower", message, domain.EventNewFollower); err != nil {
		slog.Warn("failed to create follower notification", "artist_id", artistID, "error", err)
	}
}

// SongPublished fans a release out to every follower of the artist. Runs
// detached from the request so a slow fanout never delays the upload
// response.
func (s *NotificationService) SongPublished(ctx context.Context, song *catalog.Song) {
	if s.followers == nil {
		return
	}
	artistID, songID, songTitle := song.UserID, song.ID, song.Title
	artistName := song.ArtistName
	go func() {
		fanoutCtx, cancel := context.WithTimeout(context.Background(), fanoutTimeout)
		defer cancel()

		// Songs coming straight from an insert carry no joined artist name.
		if artistName == "" {
			if user, err := s.users.GetByID(fanoutCtx, artistID); err == nil {
				artistName = user.Username
			} else {
				artistName = "An artist you follow"
			}
		}

		followerIDs, err := s.followers.FollowerIDs(fanoutCtx, artistID)
		if err != nil {
			slog.Warn("release fanout aborted", "song_id", songID, "error", err)
			return
		}
		message := fmt.Sprintf("%s released '%s'.", artistName, songTitle)
		for _, followerID := range followerIDs {
			if err := s.Create(fanoutCtx, followerID, "New release", message, domain.EventNewRelease); err != nil {
				slog.Warn("failed to create release notification", "user_id", followerID, "error", err)
			}
		}
	}()
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
