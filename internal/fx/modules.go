package fx

import (
	"aoe2-overlay/internal/api"
	"aoe2-overlay/internal/config"
	"aoe2-overlay/internal/database"
	"aoe2-overlay/internal/lang"
	"aoe2-overlay/internal/logger"
	"aoe2-overlay/internal/preload"
	"aoe2-overlay/internal/refdata"
	"aoe2-overlay/internal/repository"
	"aoe2-overlay/internal/server"
	"aoe2-overlay/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideStatsClient(http *api.Client, cfg *config.Config) *api.StatsClient {
	return api.NewStatsClient(http, cfg.StatsAPIRoot)
}

func ProvideRefSource(http *api.Client, cfg *config.Config) *api.RefSource {
	return api.NewRefSource(http, cfg.RefDataRoot)
}

func ProvideStore(cfg *config.Config, log zerolog.Logger) *refdata.Store {
	return refdata.NewStore(cfg.IndexPlatform, log)
}

func ProvideLangCache(cfg *config.Config) *lang.Cache {
	return lang.NewCache(cfg.DefaultLanguage)
}

func ProvidePreloader(source *api.RefSource, stats *api.StatsClient, store *refdata.Store, cache *lang.Cache, cfg *config.Config, log zerolog.Logger) *preload.Preloader {
	return preload.New(source, stats, store, cache, cfg.DefaultGame, cfg.RefreshInterval, log)
}

func ProvideMatchInfoService(stats *api.StatsClient, store *refdata.Store, cache *lang.Cache, cfg *config.Config, log zerolog.Logger) *service.MatchInfoService {
	return service.NewMatchInfoService(stats, store, cache, cfg.DefaultGame, cfg.DefaultLanguage, log)
}

func ProvideOverlayServer(svc *service.MatchInfoService, store *refdata.Store, archive *repository.MatchArchive, log zerolog.Logger) *server.OverlayServer {
	return server.NewOverlayServer(svc, store, archive, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// api clients
	fx.Provide(api.NewClient),
	fx.Provide(ProvideStatsClient),
	fx.Provide(ProvideRefSource),
	// stores
	fx.Provide(ProvideStore),
	fx.Provide(ProvideLangCache),
	fx.Provide(repository.NewMatchArchive),
	// background refresh
	fx.Provide(ProvidePreloader),
	// svc
	fx.Provide(ProvideMatchInfoService),
	// server
	fx.Provide(ProvideOverlayServer),
)
