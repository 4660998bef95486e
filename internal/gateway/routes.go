package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soundrift/soundrift/internal/gateway/middleware"
	billinghttp "github.com/soundrift/soundrift/internal/modules/billing/interfaces/http"
	cataloghttp "github.com/soundrift/soundrift/internal/modules/catalog/interfaces/http"
	discoveryhttp "github.com/soundrift/soundrift/internal/modules/discovery/interfaces/http"
	engagementhttp "github.com/soundrift/soundrift/internal/modules/engagement/interfaces/http"
	identityhttp "github.com/soundrift/soundrift/internal/modules/identity/interfaces/http"
	notificationhttp "github.com/soundrift/soundrift/internal/modules/notification/interfaces/http"
)

// RouterConfig holds the handlers and middleware the router wires together.
type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleware
	UserHandler         *identityhttp.UserHandler
	CatalogHandler      *cataloghttp.CatalogHandler
	EngagementHandler   *engagementhttp.EngagementHandler
	DiscoveryHandler    *discoveryhttp.DiscoveryHandler
	BillingHandler      *billinghttp.BillingHandler
	NotificationHandler *notificationhttp.NotificationHandler
}

// SetupRoutes creates and configures all application routes.
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	auth := config.AuthMiddleware

	require := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }
	flexible := func(h http.HandlerFunc) http.Handler { return auth.FlexibleAuth(h) }

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	// Identity
	mux.HandleFunc("POST /auth/register", config.UserHandler.Register)
	mux.HandleFunc("POST /auth/login", config.UserHandler.Login)
	mux.HandleFunc("POST /auth/google", config.UserHandler.GoogleLogin)
	mux.Handle("GET /me", require(config.UserHandler.GetProfile))
	mux.Handle("PATCH /me", require(config.UserHandler.UpdateProfile))
	mux.Handle("POST /me/picture", require(config.UserHandler.UploadProfilePicture))
	mux.Handle("DELETE /me", require(config.UserHandler.DeleteAccount))

	// Catalog
	mux.Handle("POST /songs", require(config.CatalogHandler.CreateSong))
	mux.Handle("GET /songs/{id}", flexible(config.CatalogHandler.GetSong))
	mux.Handle("PATCH /songs/{id}", require(config.CatalogHandler.UpdateSong))
	mux.Handle("DELETE /songs/{id}", require(config.CatalogHandler.DeleteSong))
	mux.Handle("GET /users/{id}/songs", flexible(config.CatalogHandler.GetUserSongs))
	mux.HandleFunc("GET /genres", config.CatalogHandler.ListGenres)
	mux.HandleFunc("GET /albums", config.CatalogHandler.ListAlbums)
	mux.Handle("POST /albums/{id}/cover", require(config.CatalogHandler.UploadAlbumCover))

	// Engagement
	mux.Handle("POST /songs/{id}/like", require(config.EngagementHandler.LikeSong))
	mux.Handle("DELETE /songs/{id}/like", require(config.EngagementHandler.UnlikeSong))
	mux.Handle("POST /songs/{id}/play", flexible(config.EngagementHandler.RecordPlay))
	mux.Handle("POST /songs/{id}/favorite", require(config.EngagementHandler.FavoriteSong))
	mux.Handle("DELETE /songs/{id}/favorite", require(config.EngagementHandler.UnfavoriteSong))
	mux.Handle("POST /albums/{id}/favorite", require(config.EngagementHandler.FavoriteAlbum))
	mux.Handle("DELETE /albums/{id}/favorite", require(config.EngagementHandler.UnfavoriteAlbum))
	mux.Handle("POST /artists/{id}/follow", require(config.EngagementHandler.FollowArtist))
	mux.Handle("DELETE /artists/{id}/follow", require(config.EngagementHandler.UnfollowArtist))
	mux.Handle("GET /artists/{id}/followers", flexible(config.EngagementHandler.GetFollowers))
	mux.Handle("GET /me/favorites/songs", require(config.EngagementHandler.GetFavoriteSongs))
	mux.Handle("GET /me/favorites/albums", require(config.EngagementHandler.GetFavoriteAlbums))
	mux.Handle("GET /me/recently-played", require(config.EngagementHandler.GetRecentlyPlayed))
	mux.Handle("GET /me/following", require(config.EngagementHandler.GetFollowing))

	// Discovery
	mux.Handle("GET /discover/trending", flexible(config.DiscoveryHandler.Trending))
	mux.Handle("GET /discover/search", flexible(config.DiscoveryHandler.Search))
	mux.Handle("GET /discover/recommendations", flexible(config.DiscoveryHandler.Recommendations))
	mux.Handle("GET /discover/random", flexible(config.DiscoveryHandler.Random))
	mux.Handle("GET /discover/songs", flexible(config.DiscoveryHandler.ListSongs))

	// Billing
	mux.HandleFunc("GET /billing/plans", config.BillingHandler.ListPlans)
	mux.Handle("POST /billing/subscribe", require(config.BillingHandler.Subscribe))
	mux.Handle("POST /billing/cancel", require(config.BillingHandler.Cancel))
	mux.Handle("GET /billing/subscription", require(config.BillingHandler.GetSubscription))

	// Notifications
	mux.Handle("GET /notifications", require(config.NotificationHandler.ListNotifications))
	mux.Handle("PATCH /notifications/{id}/read", require(config.NotificationHandler.MarkAsRead))
	mux.Handle("PATCH /notifications/read-all", require(config.NotificationHandler.MarkAllAsRead))
	mux.Handle("GET /notifications/unread-count", require(config.NotificationHandler.UnreadCount))
	mux.Handle("GET /ws", require(config.NotificationHandler.Subscribe))

	return mux
}
