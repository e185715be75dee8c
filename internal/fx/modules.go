package fx

import (
	"database/sql"
	"wcl-enricher/internal/api"
	"wcl-enricher/internal/config"
	"wcl-enricher/internal/database"
	"wcl-enricher/internal/db"
	"wcl-enricher/internal/logger"
	"wcl-enricher/internal/metrics"
	"wcl-enricher/internal/repository"
	"wcl-enricher/internal/server"
	"wcl-enricher/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// applyLogLevel lowers or raises the global level once config is known.
func applyLogLevel(cfg *config.Config, log zerolog.Logger) {
	level := logger.FromString(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)
	log.Debug().Str("level", level.String()).Msg("log level applied")
}

var Module = fx.Options(
	logger.Module,
	fx.Provide(config.Load),
	fx.Invoke(applyLogLevel),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(metrics.New),
	// repos
	fx.Provide(fx.Annotate(repository.NewCacheRepository, fx.As(new(service.CacheStore)))),
	fx.Provide(fx.Annotate(repository.NewTierRepository, fx.As(new(service.TierStore)), fx.As(new(service.ActiveTierSource)))),
	// api client
	fx.Provide(fx.Annotate(api.NewWCLClient, fx.As(new(service.Upstream)))),
	// svc
	fx.Provide(fx.Annotate(service.NewEnrichService, fx.As(new(server.Enricher)))),
	fx.Provide(fx.Annotate(service.NewTierService, fx.As(new(server.TierManager)))),
	// server
	fx.Provide(server.NewAdminServer),
	fx.Provide(server.NewRouter),
)
