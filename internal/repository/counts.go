package repository

import (
	"context"
	"dodgetracker/internal/domain"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CountRepository writes the per-cycle snapshot counters: the per-tier
// player counts shown on the site and the per-region latest update marker.
type CountRepository struct {
	logger zerolog.Logger
}

func NewCountRepository(logger zerolog.Logger) *CountRepository {
	return &CountRepository{logger: logger}
}

// InsertPlayerCounts writes three rows per region, one per apex tier.
func (r *CountRepository) InsertPlayerCounts(ctx context.Context, tx pgx.Tx, counts []domain.TierCounts) error {
	if len(counts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range counts {
		r.logger.Info().
			Str("region", string(c.Region)).
			Int("master", c.Master).
			Int("grandmaster", c.Grandmaster).
			Int("challenger", c.Challenger).
			Msg("inserting player counts")

		batch.Queue(`INSERT INTO player_counts (region, rank_tier, player_count) VALUES ($1, $2, $3)`,
			c.Region, domain.TierMaster, c.Master)
		batch.Queue(`INSERT INTO player_counts (region, rank_tier, player_count) VALUES ($1, $2, $3)`,
			c.Region, domain.TierGrandmaster, c.Grandmaster)
		batch.Queue(`INSERT INTO player_counts (region, rank_tier, player_count) VALUES ($1, $2, $3)`,
			c.Region, domain.TierChallenger, c.Challenger)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert player counts: %w", err)
	}

	return nil
}

// SetLatestUpdates refreshes the per-region update markers. The update
// trigger relays each marker to live subscribers as the region's liveness
// heartbeat.
func (r *CountRepository) SetLatestUpdates(ctx context.Context, tx pgx.Tx, regions []domain.Region, at time.Time) error {
	if len(regions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, region := range regions {
		batch.Queue(`
			INSERT INTO latest_updates (region, update_time)
			VALUES ($1, $2)
			ON CONFLICT (region) DO UPDATE SET update_time = EXCLUDED.update_time`,
			region, at)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to set latest updates: %w", err)
	}

	return nil
}
