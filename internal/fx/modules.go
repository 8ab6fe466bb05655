package fx

import (
	"dodgetracker/internal/config"
	"dodgetracker/internal/database"
	"dodgetracker/internal/fetcher"
	"dodgetracker/internal/logger"
	"dodgetracker/internal/lolpros"
	"dodgetracker/internal/repository"
	"dodgetracker/internal/riot"
	"dodgetracker/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// api clients
	fx.Provide(riot.NewClient),
	fx.Provide(lolpros.NewClient),
	fx.Provide(func(c *riot.Client) fetcher.LeagueAPI { return c }),
	fx.Provide(func(c *riot.Client) service.AccountAPI { return c }),
	fx.Provide(func(c *lolpros.Client) service.SlugAPI { return c }),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewEventRepository),
	fx.Provide(repository.NewAccountRepository),
	fx.Provide(repository.NewCountRepository),
	// svc
	fx.Provide(fetcher.NewFetcher),
	fx.Provide(service.NewEnrichmentService),
	fx.Provide(service.NewUpdaterService),
)
