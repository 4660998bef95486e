package catalog

import (
	"github.com/jmoiron/sqlx"
	"github.com/soundrift/soundrift/internal/modules/catalog/application"
	"github.com/soundrift/soundrift/internal/modules/catalog/domain"
	"github.com/soundrift/soundrift/internal/modules/catalog/infrastructure/persistence/postgres"
	"github.com/soundrift/soundrift/internal/modules/catalog/interfaces/http"
)

type Module struct {
	Repo    domain.SongRepository
	Service *application.CatalogService
	Handler *http.CatalogHandler
}

func NewModule(db *sqlx.DB, files application.Uploader, notifier application.ReleaseNotifier, invalidator application.TrendingInvalidator) *Module {
	repo := postgres.NewSongRepository(db)
	service := application.NewCatalogService(repo, files, notifier, invalidator)
	handler := http.NewCatalogHandler(service)

	return &Module{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
