package notification

import (
	"github.com/jmoiron/sqlx"
	"github.com/soundrift/soundrift/internal/modules/notification/application"
	"github.com/soundrift/soundrift/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/soundrift/soundrift/internal/modules/notification/infrastructure/websocket"
	notificationhttp "github.com/soundrift/soundrift/internal/modules/notification/interfaces/http"
)

type Module struct {
	Service *application.NotificationService
	Handler *notificationhttp.NotificationHandler
	Hub     *websocket.Hub
}

func NewModule(db *sqlx.DB, users application.UsernameResolver) *Module {
	repo := postgres.NewNotificationRepository(db)
	hub := websocket.NewHub()
	go hub.Run()

	service := application.NewNotificationService(repo, hub, users)
	handler := notificationhttp.NewNotificationHandler(service, hub)

	return &Module{
		Service: service,
		Handler: handler,
		Hub:     hub,
	}
}
