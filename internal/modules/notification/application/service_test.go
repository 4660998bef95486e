package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	catalog "github.com/soundrift/soundrift/internal/modules/catalog/domain"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/soundrift/soundrift/internal/modules/notification/domain"
	"github.com/soundrift/soundrift/internal/modules/notification/infrastructure/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNotificationRepo struct {
	created  chan *domain.Notification
	createFn func(ctx context.Context, notification *domain.Notification) error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{created: make(chan *domain.Notification, 16)}
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	if m.createFn != nil {
		return m.createFn(ctx, notification)
	}
	m.created <- notification
	return nil
}

func (m *mockNotificationRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	return nil, nil
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return nil
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (m *mockNotificationRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

type mockResolver struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

func (m *mockResolver) GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, identity.ErrUserNotFound
}

type mockFollowerSource struct {
	ids []uuid.UUID
	err error
}

func (m *mockFollowerSource) FollowerIDs(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error) {
	return m.ids, m.err
}

func newTestHub(t *testing.T) *websocket.Hub {
	t.Helper()
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func collect(t *testing.T, ch chan *domain.Notification, n int) []*domain.Notification {
	t.Helper()
	out := make([]*domain.Notification, 0, n)
	for len(out) < n {
		select {
		case notification := <-ch:
			out = append(out, notification)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d notifications, got %d", n, len(out))
		}
	}
	return out
}

func TestNotifyNewFollower_UsesFollowerName(t *testing.T) {
	repo := newMockNotificationRepo()
	users := &mockResolver{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*identity.User, error) {
			return &identity.User{ID: id, Username: "nova"}, nil
		},
	}
	svc := NewNotificationService(repo, newTestHub(t), users)

	artistID := uuid.New()
	svc.NotifyNewFollower(context.Background(), artistID, uuid.New())

	got := collect(t, repo.created, 1)[0]
	assert.Equal(t, artistID, got.UserID)
	assert.Equal(t, domain.EventNewFollower, got.Type)
	assert.Equal(t, "nova started following you.", got.Message)
	assert.False(t, got.IsRead)
}

func TestNotifyNewFollower_AnonymousFallback(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, newTestHub(t), &mockResolver{})

	svc.NotifyNewFollower(context.Background(), uuid.New(), uuid.New())

	got := collect(t, repo.created, 1)[0]
	assert.Equal(t, "Someone started following you.", got.Message)
}

func TestSongPublished_FansOutToFollowers(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, newTestHub(t), &mockResolver{})

	followers := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	svc.SetFollowerSource(&mockFollowerSource{ids: followers})

	svc.SongPublished(context.Background(), &catalog.Song{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ArtistName: "Nova",
		Title:      "Aurora",
	})

	got := collect(t, repo.created, len(followers))
	recipients := map[uuid.UUID]bool{}
	for _, notification := range got {
		recipients[notification.UserID] = true
		assert.Equal(t, domain.EventNewRelease, notification.Type)
		assert.Equal(t, "Nova released 'Aurora'.", notification.Message)
	}
	for _, id := range followers {
		assert.True(t, recipients[id])
	}
}

func TestSongPublished_ResolvesMissingArtistName(t *testing.T) {
	repo := newMockNotificationRepo()
	users := &mockResolver{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*identity.User, error) {
			return &identity.User{ID: id, Username: "Nova"}, nil
		},
	}
	svc := NewNotificationService(repo, newTestHub(t), users)
	svc.SetFollowerSource(&mockFollowerSource{ids: []uuid.UUID{uuid.New()}})

	// A freshly inserted song carries no joined artist name.
	svc.SongPublished(context.Background(), &catalog.Song{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Title:  "Aurora",
	})

	got := collect(t, repo.created, 1)[0]
	assert.Equal(t, "Nova released 'Aurora'.", got.Message)
}

func TestSongPublished_NoFollowerSourceIsNoop(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, newTestHub(t), &mockResolver{})

	svc.SongPublished(context.Background(), &catalog.Song{ID: uuid.New()})

	select {
	case <-repo.created:
		t.Fatal("no fanout expected without a follower source")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreate_SurfacesRepoError(t *testing.T) {
	repo := newMockNotificationRepo()
	repo.createFn = func(ctx context.Context, notification *domain.Notification) error {
		return errors.New("store down")
	}
	svc := NewNotificationService(repo, newTestHub(t), &mockResolver{})

	err := svc.Create(context.Background(), uuid.New(), "t", "m", domain.EventInfo)
	require.Error(t, err)
}
