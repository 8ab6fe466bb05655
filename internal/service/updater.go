package service

import (
	"context"
	"dodgetracker/internal/config"
	"dodgetracker/internal/domain"
	"dodgetracker/internal/engine"
	"dodgetracker/internal/fetcher"
	"dodgetracker/internal/repository"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// UpdaterService drives the reconciliation loop: fetch the ladders, diff
// them against persisted state, and apply every derived change in a single
// bounded transaction. Cycles run back to back; a failed cycle rolls back
// in full and the next one re-derives everything from persisted state.
type UpdaterService struct {
	pool        *pgxpool.Pool
	fetcher     *fetcher.Fetcher
	enrichment  *EnrichmentService
	playerRepo  *repository.PlayerRepository
	eventRepo   *repository.EventRepository
	accountRepo *repository.AccountRepository
	countRepo   *repository.CountRepository
	cfg         *config.Config
	logger      zerolog.Logger
}

func NewUpdaterService(
	pool *pgxpool.Pool,
	snapshotFetcher *fetcher.Fetcher,
	enrichment *EnrichmentService,
	playerRepo *repository.PlayerRepository,
	eventRepo *repository.EventRepository,
	accountRepo *repository.AccountRepository,
	countRepo *repository.CountRepository,
	cfg *config.Config,
	logger zerolog.Logger,
) *UpdaterService {
	return &UpdaterService{
		pool:        pool,
		fetcher:     snapshotFetcher,
		enrichment:  enrichment,
		playerRepo:  playerRepo,
		eventRepo:   eventRepo,
		accountRepo: accountRepo,
		countRepo:   countRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run executes cycles until the context is cancelled. Cycle N+1 never
// starts before cycle N has committed or rolled back.
func (s *UpdaterService) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("updater stopping")
			return ctx.Err()
		default:
		}

		if err := s.RunCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				continue
			}
			s.logger.Error().Err(err).Msg("cycle failed, continuing with next cycle")
		}
	}
}

// RunCycle performs one fetch-reconcile-write iteration under the cycle
// deadline. Everything up to the commit happens inside one transaction; on
// any error or on deadline expiry the transaction rolls back and no partial
// write is visible.
func (s *UpdaterService) RunCycle(ctx context.Context) error {
	start := time.Now()
	logger := s.logger.With().Str("cycle_id", uuid.New().String()).Logger()
	logger.Info().Msg("starting cycle")

	cycleCtx, cancel := context.WithTimeout(ctx, s.cfg.CycleTimeout)
	defer cancel()

	tx, err := s.pool.Begin(cycleCtx)
	if err != nil {
		return err
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback(context.Background())
	}()

	if err := s.runCycleTx(cycleCtx, tx, logger); err != nil {
		logger.Error().Err(err).Msg("cycle failed, rolling back transaction")
		return err
	}

	if err := tx.Commit(cycleCtx); err != nil {
		return err
	}

	s.checkIdentityCounts(ctx, logger)

	logger.Info().Dur("duration", time.Since(start)).Msg("cycle committed")
	return nil
}

func (s *UpdaterService) runCycleTx(ctx context.Context, tx pgx.Tx, logger zerolog.Logger) error {
	var snapshot *fetcher.Snapshot
	var oldState map[domain.PlayerKey]domain.PlayerState
	var demotionHistory map[domain.PlayerKey][]time.Time

	// The API fan-out and the persisted-state read are independent; only
	// the read goroutine touches the transaction.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = s.fetcher.Fetch(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		if oldState, err = s.playerRepo.CurrentPlayers(gCtx, tx); err != nil {
			return err
		}
		demotionHistory, err = s.eventRepo.DemotionHistory(gCtx, tx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info().
		Int("fetched", len(snapshot.Players)).
		Int("stored", len(oldState)).
		Int("diff", len(oldState)-len(snapshot.Players)).
		Msg("snapshots loaded")

	result := engine.Reconcile(oldState, snapshot.Players, demotionHistory, snapshot.ErroredRegions,
		engine.Options{DecayLPLoss: s.cfg.DecayLPLoss})

	logger.Info().
		Int("dodges", len(result.Dodges)).
		Int("promotions", len(result.Promotions)).
		Int("demotions", len(result.Demotions)).
		Int("unknown_players", result.UnknownPlayers).
		Msg("snapshot reconciled")

	if len(result.Dodges) > 0 {
		if err := s.enrichment.EnrichDodges(ctx, tx, result.Dodges); err != nil {
			return err
		}
		if err := s.eventRepo.InsertDodges(ctx, tx, result.Dodges); err != nil {
			return err
		}
	}

	if err := s.playerRepo.UpsertPlayers(ctx, tx, snapshot.Players); err != nil {
		return err
	}
	if err := s.eventRepo.InsertPromotions(ctx, tx, result.Promotions); err != nil {
		return err
	}
	if err := s.eventRepo.InsertDemotions(ctx, tx, result.Demotions); err != nil {
		return err
	}
	if err := s.countRepo.InsertPlayerCounts(ctx, tx, snapshot.Counts); err != nil {
		return err
	}

	return s.countRepo.SetLatestUpdates(ctx, tx, fetchedRegions(snapshot.ErroredRegions), time.Now())
}

// checkIdentityCounts is a post-commit diagnostic: the summoners and
// riot_ids tables should grow in lockstep. A mismatch only warns.
func (s *UpdaterService) checkIdentityCounts(ctx context.Context, logger zerolog.Logger) {
	summoners, riotIDs, err := s.accountRepo.IdentityCounts(ctx, s.pool)
	if err != nil {
		logger.Warn().Err(err).Msg("identity count check failed")
		return
	}
	if summoners != riotIDs {
		logger.Warn().
			Int64("summoners", summoners).
			Int64("riot_ids", riotIDs).
			Msg("summoners and riot_ids counts do not match")
	}
}

func fetchedRegions(errored []domain.Region) []domain.Region {
	skip := make(map[domain.Region]bool, len(errored))
	for _, region := range errored {
		skip[region] = true
	}

	var regions []domain.Region
	for _, region := range domain.SupportedRegions {
		if !skip[region] {
			regions = append(regions, region)
		}
	}
	return regions
}
