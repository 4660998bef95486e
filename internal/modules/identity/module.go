package identity

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/soundrift/soundrift/internal/modules/identity/application"
	"github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/soundrift/soundrift/internal/modules/identity/infrastructure/persistence/postgres"
	"github.com/soundrift/soundrift/internal/modules/identity/interfaces/http"
)

type Module struct {
	Repo    domain.UserRepository
	Service *application.UserService
	Handler *http.UserHandler
}

func NewModule(db *sqlx.DB, files application.PictureStore, jwtSecret string, jwtExpiry time.Duration, googleClientID string) *Module {
	repo := postgres.NewUserRepository(db)
	service := application.NewUserService(repo, files, jwtSecret, jwtExpiry)
	handler := http.NewUserHandler(service, googleClientID)

	return &Module{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
