package main

import (
	"context"
	fxmodules "dodgetracker/internal/fx"
	"dodgetracker/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runUpdater),
	).Run()
}

func runUpdater(
	lc fx.Lifecycle,
	updater *service.UpdaterService,
	pool *pgxpool.Pool,
	logger zerolog.Logger,
) {
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				logger.Info().Msg("updater starting")
				if err := updater.Run(loopCtx); err != nil && loopCtx.Err() == nil {
					logger.Fatal().Err(err).Msg("updater failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down updater")
			cancel()

			// Let the in-flight cycle finish rolling back or committing.
			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn().Msg("shutdown deadline reached before cycle finished")
			}

			pool.Close()
			logger.Info().Msg("updater stopped gracefully")
			return nil
		},
	})
}
