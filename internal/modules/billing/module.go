package billing

import (
	"github.com/jmoiron/sqlx"
	"github.com/soundrift/soundrift/internal/modules/billing/application"
	"github.com/soundrift/soundrift/internal/modules/billing/infrastructure/persistence/postgres"
	"github.com/soundrift/soundrift/internal/modules/billing/interfaces/http"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
)

type Module struct {
	Service *application.BillingService
	Handler *http.BillingHandler
}

func NewModule(db *sqlx.DB, users identity.UserRepository, keyID, keySecret string) *Module {
	repo := postgres.NewPlanRepository(db)
	service := application.NewBillingService(repo, users, keyID, keySecret)
	handler := http.NewBillingHandler(service)

	return &Module{
		Service: service,
		Handler: handler,
	}
}
