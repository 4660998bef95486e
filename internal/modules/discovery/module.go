package discovery

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/soundrift/soundrift/internal/modules/discovery/application"
	"github.com/soundrift/soundrift/internal/modules/discovery/infrastructure/cache"
	"github.com/soundrift/soundrift/internal/modules/discovery/infrastructure/persistence/postgres"
	"github.com/soundrift/soundrift/internal/modules/discovery/interfaces/http"
)

type Module struct {
	Service *application.DiscoveryService
	Handler *http.DiscoveryHandler
	Cache   *cache.TrendingCache
}

func NewModule(db *sqlx.DB, redisClient *redis.Client) *Module {
	repo := postgres.NewDiscoveryRepository(db)
	service := application.NewDiscoveryService(repo)
	trendingCache := cache.NewTrendingCache(redisClient)
	handler := http.NewDiscoveryHandler(service, trendingCache)

	return &Module{
		Service: service,
		Handler: handler,
		Cache:   trendingCache,
	}
}
