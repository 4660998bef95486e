package engagement

import (
	"github.com/jmoiron/sqlx"
	"github.com/soundrift/soundrift/internal/modules/engagement/application"
	"github.com/soundrift/soundrift/internal/modules/engagement/infrastructure/persistence/postgres"
	"github.com/soundrift/soundrift/internal/modules/engagement/interfaces/http"
)

type Module struct {
	Service *application.LedgerService
	Handler *http.EngagementHandler
}

func NewModule(db *sqlx.DB, users application.UserFinder, notifier application.FollowNotifier) *Module {
	repo := postgres.NewLedgerRepository(db)
	service := application.NewLedgerService(repo, users, notifier)
	handler := http.NewEngagementHandler(service)

	return &Module{
		Service: service,
		Handler: handler,
	}
}
